package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / freelancer; admin is never public
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"code":    apperr.ErrValidation.Code,
		"message": "Validation error",
		"errors":  errs,
	})
}

func userView(u models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = models.RoleClient
	}

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "name is required")
	}
	if email == "" {
		errs.Add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "email is invalid")
	}
	if password == "" {
		errs.Add("password", "password is required")
	} else if len(password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}
	if role != models.RoleClient && role != models.RoleFreelancer {
		errs.Add("role", "role must be client or freelancer")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var n int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		errs.Add("email", "email is already registered")
		return validationFail(c, errs)
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		IsActive: true,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("email", "email is already registered")
			return validationFail(c, errs)
		}
		return err
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	h.setCookie(c, token, h.Expires*60)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "registered",
		"data": fiber.Map{
			"user":  userView(u),
			"token": token,
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "email is required")
	}
	if password == "" {
		errs.Add("password", "password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}
	if !utils.CheckPassword(u.Password, password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}
	if !u.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	h.setCookie(c, token, h.Expires*60)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged in",
		"data": fiber.Map{
			"user":  userView(u),
			"token": token,
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setCookie(c, "", -1)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}

	var u models.User
	if err := h.DB.First(&u, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrUnauthorized
		}
		return err
	}
	return ok(c, userView(u))
}
