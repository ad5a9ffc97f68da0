package controller

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/configs"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/dto"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/repository"
)

var validate = validator.New()

type AuthController struct {
	Repo         *repository.UserRepository
	SignatureDir string
}

func NewAuthController(repo *repository.UserRepository) *AuthController {
	return &AuthController{
		Repo:         repo,
		SignatureDir: configs.GetEnv("SIGNATURE_DIR", "./uploads/signatures"),
	}
}

// POST /login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctrl.Repo.FindByEmail(c.UserContext(), strings.ToLower(body.Email))
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	ttl := configs.GetEnvDuration("JWT_TTL", 12*time.Hour)
	token, err := helper.CreateAccessToken(user.ID.Hex(), user.Email, user.Name, user.Role, ttl)
	if err != nil {
		log.Println("[AUTH] token issue failed:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to issue token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return helper.Success(c, "Login successful", dto.LoginResponse{Token: token, User: user})
}

// GET /me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := ctrl.Repo.FindByID(c.UserContext(), userID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Profile", user)
}

// POST /me/signature — upload and normalize the caller's signature image.
func (ctrl *AuthController) UploadSignature(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	fileHeader, err := c.FormFile("signature")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "signature file is required")
	}
	if constants.DetectFileTypeFromExt(fileHeader.Filename) != constants.FileImage {
		return helper.Error(c, fiber.StatusBadRequest, "signature must be png, jpeg or webp")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".webp") {
		img, err = webp.Decode(src)
	} else {
		img, err = imaging.Decode(src)
	}
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "could not decode image")
	}

	// Normalize to a small PNG so the PDF embedder has a predictable input.
	img = imaging.Resize(img, 0, 160, imaging.Lanczos)
	if err := os.MkdirAll(ctrl.SignatureDir, 0o755); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "storage unavailable")
	}
	// Fresh name per upload so a replaced signature is never served stale.
	path := filepath.Join(ctrl.SignatureDir, fmt.Sprintf("%s-%s.png", userID, uuid.NewString()[:8]))
	if err := imaging.Save(img, path); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "failed to store signature")
	}

	if err := ctrl.Repo.UpdateSignature(c.UserContext(), userID, path); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.Success(c, "Signature updated", fiber.Map{"signature_image": path})
}
