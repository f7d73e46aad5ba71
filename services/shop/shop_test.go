package shop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"
)

func TestRegister(t *testing.T) {
	svc, repo := newTestService(Options{})
	ctx := context.Background()

	shop, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if shop.Status != models.ShopPending {
		t.Fatalf("status=%s, want pending", shop.Status)
	}
	if shop.Email != "rafael@example.com" {
		t.Fatalf("email not normalized: %q", shop.Email)
	}
	if shop.BillingPeriod != models.BillingMonthly {
		t.Fatalf("billing period=%s, want monthly default", shop.BillingPeriod)
	}
	if !strings.HasPrefix(shop.PublicLink, "navalha-de-ouro-") || len(shop.PublicLink) != len("navalha-de-ouro-")+6 {
		t.Fatalf("unexpected public link %q", shop.PublicLink)
	}
	if shop.PasswordHash == "" || shop.PasswordHash == "s3cret!" {
		t.Fatal("password must be stored hashed")
	}
	if _, err := repo.GetByID(ctx, shop.ID); err != nil {
		t.Fatalf("shop not stored: %v", err)
	}

	if _, err := svc.Register(ctx, validRegistration()); !domain.IsConflict(err) {
		t.Fatalf("duplicate email: err=%v, want ConflictError", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(Options{})
	cases := map[string]struct {
		mutate func(*models.RegisterShopRequest)
		field  string
	}{
		"owner name":  {func(r *models.RegisterShopRequest) { r.OwnerName = " " }, "ownerName"},
		"shop name":   {func(r *models.RegisterShopRequest) { r.ShopName = "" }, "shopName"},
		"email":       {func(r *models.RegisterShopRequest) { r.Email = "not-an-email" }, "email"},
		"short phone": {func(r *models.RegisterShopRequest) { r.Phone = "123" }, "phone"},
		"password":    {func(r *models.RegisterShopRequest) { r.Password = "abc" }, "password"},
		"plan":        {func(r *models.RegisterShopRequest) { r.Plan = "gold" }, "plan"},
		"billing":     {func(r *models.RegisterShopRequest) { r.BillingPeriod = "weekly" }, "billingPeriod"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err=%v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field=%s, want %s", verr.Field, tc.field)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Navalha de Ouro":   "navalha-de-ouro",
		"  Barber & Co.  ":  "barber-co",
		"Salão São João 2":  "sal-o-s-o-jo-o-2",
		"***":               "shop",
		"Top--Cut__Studio!": "top-cut-studio",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(Options{TokenTTL: time.Hour})
	ctx := context.Background()
	shop, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "rafael@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err=%v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "s3cret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err=%v", err)
	}

	resp, err := svc.Authenticate(ctx, " RAFAEL@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resp.ShopID != shop.ID || resp.Token == "" {
		t.Fatalf("unexpected auth response %+v", resp)
	}

	owner, err := svc.AuthenticateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if owner.ID != shop.ID {
		t.Fatalf("token resolved to %s, want %s", owner.ID, shop.ID)
	}
}

func TestAuthenticateTokenRejectsUnknownSession(t *testing.T) {
	svc, repo := newTestService(Options{})
	ctx := context.Background()
	repo.put(activeShop("shop-1"))

	token, err := utils.IssueSessionToken("shop-1", "shop-1@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	// Signed but never stored: the owner logged in elsewhere since.
	if _, err := svc.AuthenticateToken(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unstored token: err=%v", err)
	}
	if _, err := svc.AuthenticateToken(ctx, "garbage"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("malformed token: err=%v", err)
	}
}

func TestAuthenticateFirebaseLinksByEmail(t *testing.T) {
	svc, repo := newTestService(Options{})
	ctx := context.Background()
	repo.put(activeShop("shop-1"))

	shop, err := svc.AuthenticateFirebase(ctx, "uid-1", "Shop-1@Example.com")
	if err != nil {
		t.Fatalf("AuthenticateFirebase: %v", err)
	}
	if shop.ID != "shop-1" || shop.FirebaseUID != "uid-1" {
		t.Fatalf("unexpected shop %+v", shop)
	}

	// Second sign-in resolves by uid alone.
	if shop, err = svc.AuthenticateFirebase(ctx, "uid-1", ""); err != nil || shop.ID != "shop-1" {
		t.Fatalf("lookup by uid: shop=%v err=%v", shop, err)
	}

	if _, err := svc.AuthenticateFirebase(ctx, "uid-2", "shop-1@example.com"); !domain.IsNotFound(err) {
		t.Fatalf("uid takeover: err=%v, want NotFoundError", err)
	}
	if _, err := svc.AuthenticateFirebase(ctx, "uid-3", "stranger@example.com"); !domain.IsNotFound(err) {
		t.Fatalf("unknown email: err=%v, want NotFoundError", err)
	}
}

func TestApproveStartsPlanPeriod(t *testing.T) {
	cases := []struct {
		plan      models.PlanType
		wantDays  int
		wantTrial bool
	}{
		{models.PlanTrial, 5, true},
		{models.PlanSpark, 30, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.plan), func(t *testing.T) {
			svc, repo := newTestService(Options{})
			s := activeShop("shop-1")
			s.Status = models.ShopPending
			s.Plan = tc.plan
			repo.put(s)

			approved, err := svc.Approve(context.Background(), "shop-1")
			if err != nil {
				t.Fatalf("Approve: %v", err)
			}
			if approved.Status != models.ShopActive {
				t.Fatalf("status=%s, want active", approved.Status)
			}
			if want := testNow.AddDate(0, 0, tc.wantDays); !approved.PlanExpiresAt.Equal(want) {
				t.Fatalf("planExpiresAt=%s, want %s", approved.PlanExpiresAt, want)
			}
			if approved.TrialMode != tc.wantTrial || !approved.ApprovedAt.Equal(testNow) {
				t.Fatalf("unexpected approval stamp %+v", approved)
			}
		})
	}
}

func TestApprovalTransitions(t *testing.T) {
	svc, repo := newTestService(Options{})
	ctx := context.Background()
	pending := activeShop("shop-1")
	pending.Status = models.ShopPending
	repo.put(pending)

	if _, err := svc.Reject(ctx, "shop-1", "   "); !domain.IsValidation(err) {
		t.Fatalf("empty reason: err=%v, want ValidationError", err)
	}
	rejected, err := svc.Reject(ctx, "shop-1", "incomplete documents")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.ShopRejected || rejected.RejectionReason != "incomplete documents" {
		t.Fatalf("unexpected rejected shop %+v", rejected)
	}
	if _, err := svc.Approve(ctx, "shop-1"); !domain.IsInvalidTransition(err) {
		t.Fatalf("approve rejected: err=%v, want InvalidTransitionError", err)
	}
	if _, err := svc.Suspend(ctx, "shop-1"); !domain.IsInvalidTransition(err) {
		t.Fatalf("suspend rejected: err=%v, want InvalidTransitionError", err)
	}

	repo.put(activeShop("shop-2"))
	if _, err := svc.Reactivate(ctx, "shop-2"); !domain.IsInvalidTransition(err) {
		t.Fatalf("reactivate active: err=%v, want InvalidTransitionError", err)
	}
	suspended, err := svc.Suspend(ctx, "shop-2")
	if err != nil || suspended.Status != models.ShopSuspended {
		t.Fatalf("Suspend: shop=%v err=%v", suspended, err)
	}
	reactivated, err := svc.Reactivate(ctx, "shop-2")
	if err != nil || reactivated.Status != models.ShopActive {
		t.Fatalf("Reactivate: shop=%v err=%v", reactivated, err)
	}

	if _, err := svc.Approve(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("approve missing: err=%v, want NotFoundError", err)
	}
}

func TestApproveLostRace(t *testing.T) {
	svc, repo := newTestService(Options{})
	s := activeShop("shop-1")
	s.Status = models.ShopPending
	repo.put(s)
	repo.statusRace = true

	if _, err := svc.Approve(context.Background(), "shop-1"); !domain.IsConflict(err) {
		t.Fatalf("err=%v, want ConflictError", err)
	}
}

func TestGetBookable(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(Options{EnforcePlanExpiry: true})

	repo.put(activeShop("open"))
	suspended := activeShop("suspended")
	suspended.Status = models.ShopSuspended
	repo.put(suspended)
	expired := activeShop("expired")
	expired.PlanExpiresAt = testNow.Add(-time.Minute)
	repo.put(expired)
	current := activeShop("current")
	current.PlanExpiresAt = testNow.Add(time.Hour)
	repo.put(current)

	for _, id := range []string{"open", "current"} {
		if _, err := svc.GetBookable(ctx, id); err != nil {
			t.Errorf("GetBookable(%s): %v", id, err)
		}
	}
	for _, id := range []string{"suspended", "expired", "missing"} {
		if _, err := svc.GetBookable(ctx, id); !domain.IsNotFound(err) {
			t.Errorf("GetBookable(%s): err=%v, want NotFoundError", id, err)
		}
	}

	if shop, err := svc.GetBookableByLink(ctx, "corte-fino-open"); err != nil || shop.ID != "open" {
		t.Fatalf("GetBookableByLink: shop=%v err=%v", shop, err)
	}
	if _, err := svc.GetBookableByLink(ctx, "corte-fino-expired"); !domain.IsNotFound(err) {
		t.Fatalf("expired by link: err=%v, want NotFoundError", err)
	}

	lenient, repo2 := newTestService(Options{})
	repo2.put(expired)
	if _, err := lenient.GetBookable(ctx, "expired"); err != nil {
		t.Fatalf("expiry not enforced: %v", err)
	}
}

func TestListHistory(t *testing.T) {
	svc, _ := newTestService(Options{})
	hist := svc.History.(*fakeHistory)
	ctx := context.Background()

	entries, err := svc.ListHistory(ctx, "shop-1", models.EventBookingCreated, 20)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListHistory: entries=%v err=%v", entries, err)
	}
	if hist.gotShop != "shop-1" || hist.gotType != models.EventBookingCreated || hist.gotLimit != 20 {
		t.Fatalf("unexpected query %+v", hist)
	}
	if _, err := svc.ListHistory(ctx, "shop-1", "login", 0); !domain.IsValidation(err) {
		t.Fatalf("unknown type: err=%v, want ValidationError", err)
	}
	if _, err := svc.ListHistory(ctx, "shop-1", "", 501); !domain.IsValidation(err) {
		t.Fatalf("limit: err=%v, want ValidationError", err)
	}
}

func TestRegisterDevice(t *testing.T) {
	svc, repo := newTestService(Options{})
	repo.put(activeShop("s1"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.RegisterDevice(ctx, "s1", " fcm-token-1 "); err != nil {
			t.Fatalf("RegisterDevice: %v", err)
		}
	}
	got, _ := repo.GetByID(ctx, "s1")
	if len(got.DeviceTokens) != 1 || got.DeviceTokens[0] != "fcm-token-1" {
		t.Fatalf("device tokens=%v, want one trimmed token", got.DeviceTokens)
	}

	if err := svc.RegisterDevice(ctx, "s1", "  "); !domain.IsValidation(err) {
		t.Fatalf("blank token: err=%v, want ValidationError", err)
	}
	if err := svc.RegisterDevice(ctx, "missing", "tok"); !domain.IsNotFound(err) {
		t.Fatalf("unknown shop: err=%v, want NotFoundError", err)
	}
}
