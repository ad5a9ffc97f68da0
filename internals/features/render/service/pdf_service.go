package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/jellydator/ttlcache/v3"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	marksvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
)

// PDFService renders marksheet documents and keeps a bounded TTL cache of
// rendered files so bulk dispatch does not re-render the same marksheet per
// send.
type PDFService struct {
	cache   *ttlcache.Cache[string, string]
	outDir  string
	baseURL string
}

var _ marksvc.Renderer = (*PDFService)(nil)

func NewPDFService(outDir, baseURL string, capacity uint64, ttl time.Duration) *PDFService {
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithCapacity[string, string](capacity),
	)
	go cache.Start()
	return &PDFService{
		cache:   cache,
		outDir:  outDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *PDFService) Close() {
	s.cache.Stop()
}

// Invalidate drops the cached rendering (marks were edited).
func (s *PDFService) Invalidate(id string) {
	s.cache.Delete(id)
}

// MarksheetDocument renders (or reuses) the PDF for a marksheet and returns
// its public URL.
func (s *PDFService) MarksheetDocument(ctx context.Context, m *model.Marksheet) (string, error) {
	id := m.HexID()
	if item := s.cache.Get(id); item != nil {
		return item.Value(), nil
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create documents dir: %w", err)
	}
	filename := id + ".pdf"
	path := filepath.Join(s.outDir, filename)
	if err := s.render(m, path); err != nil {
		return "", err
	}

	url := s.baseURL + "/documents/" + filename
	s.cache.Set(id, url, ttlcache.DefaultTTL)
	return url, nil
}

func (s *PDFService) render(m *model.Marksheet, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Marksheet - "+m.Student.RegisterNumber, false)
	pdf.AddPage()

	// College header.
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Meenakshi Sundararajan Engineering College", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, m.ExamName+" - Statement of Marks", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Student block.
	pdf.SetFont("Helvetica", "", 10)
	left := [][2]string{
		{"Name", m.Student.Name},
		{"Register Number", m.Student.RegisterNumber},
		{"Department", m.Student.Department},
	}
	right := [][2]string{
		{"Year / Section", fmt.Sprintf("%d / %s", m.Student.Year, m.Student.Section)},
		{"Exam Date", m.ExamDate.Format("02 Jan 2006")},
		{"Overall Result", string(m.OverallResult)},
	}
	for i := range left {
		pdf.CellFormat(30, 6, left[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(65, 6, ": "+left[i][1], "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, right[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, ": "+right[i][1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Subjects table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(15, 7, "S.No", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 7, "Subject", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Marks", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Result", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i, subj := range m.Subjects {
		marks := fmt.Sprintf("%d", subj.Marks)
		if subj.Absent {
			marks = "AB"
		}
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(95, 7, subj.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, marks, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, string(subj.Result), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(10)

	// Signatures.
	y := pdf.GetY()
	s.placeSignature(pdf, m.Staff.SignatureImage, 20, y)
	s.placeSignature(pdf, m.Hod.SignatureImage, 140, y)
	pdf.SetY(y + 16)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(90, 5, "Staff In-charge: "+m.Staff.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Head of Department: "+m.Hod.Name, "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// placeSignature embeds a signature image if one is on record. Signatures
// are stored as webp/png/jpeg uploads; everything is normalized to PNG
// before embedding.
func (s *PDFService) placeSignature(pdf *fpdf.Fpdf, imagePath string, x, y float64) {
	if imagePath == "" {
		return
	}
	img, err := loadImage(imagePath)
	if err != nil {
		log.Printf("[RENDER] signature load failed (%s): %v", imagePath, err)
		return
	}
	img = imaging.Resize(img, 0, 120, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		log.Printf("[RENDER] signature encode failed: %v", err)
		return
	}
	name := "sig-" + filepath.Base(imagePath)
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	pdf.ImageOptions(name, x, y, 40, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func loadImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f)
	}
	return imaging.Open(path)
}
