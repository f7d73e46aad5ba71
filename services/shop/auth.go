package shop

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// ErrInvalidCredentials covers every failed owner login or session check.
var ErrInvalidCredentials = errors.New("invalid email or password")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(req *models.RegisterShopRequest) error {
	req.OwnerName = strings.TrimSpace(req.OwnerName)
	req.ShopName = strings.TrimSpace(req.ShopName)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if req.OwnerName == "" {
		return domain.ValidationError{Field: "ownerName", Msg: "is required"}
	}
	if req.ShopName == "" {
		return domain.ValidationError{Field: "shopName", Msg: "is required"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return domain.ValidationError{Field: "email", Msg: "is not a valid address", Err: err}
	}
	if n := utf8.RuneCountInString(req.Phone); n < 10 || n > 20 {
		return domain.ValidationError{Field: "phone", Msg: "must be 10 to 20 characters"}
	}
	if len(req.Password) < minPasswordLen {
		return domain.ValidationError{Field: "password", Msg: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}
	if !req.Plan.IsValid() {
		return domain.ValidationError{Field: "plan", Msg: "unknown plan " + string(req.Plan)}
	}
	if req.BillingPeriod == "" {
		req.BillingPeriod = models.BillingMonthly
	}
	if !req.BillingPeriod.IsValid() {
		return domain.ValidationError{Field: "billingPeriod", Msg: "unknown billing period " + string(req.BillingPeriod)}
	}
	return nil
}

// slugify lowercases name and keeps ASCII letters and digits, joining runs of
// anything else with a single dash.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "shop"
	}
	return slug
}

func newPublicLink(name string) string {
	return slugify(name) + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
}

// Register creates a pending shop awaiting admin approval.
func (s *DefaultShopService) Register(ctx context.Context, req models.RegisterShopRequest) (*models.Shop, error) {
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.ConflictError{Resource: "shop", Msg: "email already registered"}
	} else if !errors.Is(err, shopRepo.ErrShopNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	shop := &models.Shop{
		ID:            uuid.New().String(),
		OwnerName:     req.OwnerName,
		Name:          req.ShopName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PublicLink:    newPublicLink(req.ShopName),
		Services:      []models.Service{},
		Status:        models.ShopPending,
		Plan:          req.Plan,
		BillingPeriod: req.BillingPeriod,
		TrialMode:     req.Plan == models.PlanTrial,
		PasswordHash:  string(hash),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, shop); err != nil {
		if errors.Is(err, shopRepo.ErrShopExists) {
			return nil, domain.ConflictError{Resource: "shop", Msg: "email already registered", Err: err}
		}
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	utils.GetLogger().Info("shop registered",
		zap.String("shopID", shop.ID), zap.String("plan", string(shop.Plan)), zap.String("publicLink", shop.PublicLink))
	return shop, nil
}

// Authenticate checks owner credentials and issues a session token. Only the
// token hash is stored, so a new login invalidates the previous session.
func (s *DefaultShopService) Authenticate(ctx context.Context, email, password string) (*models.OwnerAuthResponse, error) {
	shop, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(shop.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.IssueSessionToken(shop.ID, shop.Email, s.Opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.Repo.SetTokenHash(ctx, shop.ID, utils.HashToken(token)); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	utils.GetLogger().Info("shop owner signed in", zap.String("shopID", shop.ID))
	return &models.OwnerAuthResponse{ShopID: shop.ID, Token: token, Shop: shop}, nil
}

// AuthenticateToken resolves the shop owning a session token.
func (s *DefaultShopService) AuthenticateToken(ctx context.Context, token string) (*models.Shop, error) {
	shopID, err := utils.SessionShopID(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	shop, err := s.Repo.GetByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if shop.ID != shopID {
		return nil, ErrInvalidCredentials
	}
	return shop, nil
}

// AuthenticateFirebase resolves the shop for a verified Firebase identity,
// linking the uid to the shop registered under the same email on first use.
func (s *DefaultShopService) AuthenticateFirebase(ctx context.Context, uid, email string) (*models.Shop, error) {
	shop, err := s.Repo.GetByFirebaseUID(ctx, uid)
	if err == nil {
		return shop, nil
	}
	if !errors.Is(err, shopRepo.ErrShopNotFound) {
		return nil, fmt.Errorf("failed to load shop by firebase uid: %w", err)
	}
	if email == "" {
		return nil, domain.NotFoundError{Resource: "shop"}
	}

	shop, err = s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, domain.NotFoundError{Resource: "shop"}
		}
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop.FirebaseUID != "" && shop.FirebaseUID != uid {
		return nil, domain.NotFoundError{Resource: "shop"}
	}
	if err := s.Repo.SetFirebaseUID(ctx, shop.ID, uid); err != nil {
		return nil, fmt.Errorf("failed to link firebase identity: %w", err)
	}
	shop.FirebaseUID = uid
	utils.GetLogger().Info("linked firebase identity", zap.String("shopID", shop.ID))
	return shop, nil
}
