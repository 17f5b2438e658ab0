package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/recipebox/recipebox-go/internal/crypto"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
	"github.com/recipebox/recipebox-go/internal/testhelpers"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	repo := repository.NewUserRepository(testhelpers.NewSQLiteDB(t))
	return NewAuthService(repo, testSecret, time.Hour), repo
}

func catererRequest(phone string) model.RegisterRequest {
	return model.RegisterRequest{
		Username:        "Ana",
		Phone:           phone,
		Password:        "password123",
		Role:            model.RoleCaterer,
		BusinessName:    "Ana's Kitchen",
		BusinessAddress: "1 Main St",
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RegisterRequest)
		want   error
	}{
		{"empty username", func(r *model.RegisterRequest) { r.Username = "" }, ErrUsernameRequired},
		{"blank username", func(r *model.RegisterRequest) { r.Username = "   " }, ErrUsernameRequired},
		{"empty phone", func(r *model.RegisterRequest) { r.Phone = "" }, ErrPhoneRequired},
		{"empty password", func(r *model.RegisterRequest) { r.Password = "" }, ErrPasswordRequired},
		{"long password", func(r *model.RegisterRequest) { r.Password = strings.Repeat("a", 73) }, ErrPasswordTooLong},
		{"missing role", func(r *model.RegisterRequest) { r.Role = "" }, ErrInvalidRole},
		{"unknown role", func(r *model.RegisterRequest) { r.Role = "admin" }, ErrInvalidRole},
	}

	// Validation fails before the store is touched, so no database is needed.
	svc := NewAuthService(repository.NewUserRepository(nil), testSecret, time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := catererRequest("+10000000001")
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegister_Caterer(t *testing.T) {
	svc, repo := newTestAuthService(t)

	resp, err := svc.Register(context.Background(), catererRequest(" +10000000001 "))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if resp.ID == "" {
		t.Error("Register() returned empty ID")
	}
	if resp.Phone != "+10000000001" {
		t.Errorf("Phone = %q, want trimmed phone", resp.Phone)
	}
	if resp.Role != model.RoleCaterer || resp.BusinessName != "Ana's Kitchen" {
		t.Errorf("unexpected profile %+v", resp)
	}

	stored, err := repo.GetByPhone(context.Background(), "+10000000001")
	if err != nil {
		t.Fatalf("GetByPhone() unexpected error: %v", err)
	}
	if stored.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if ok, _ := crypto.VerifyPassword("password123", stored.PasswordHash); !ok {
		t.Error("stored hash does not verify")
	}
}

func TestRegister_CustomerDropsBusinessFields(t *testing.T) {
	svc, _ := newTestAuthService(t)

	req := catererRequest("+10000000002")
	req.Role = model.RoleCustomer

	resp, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if resp.BusinessName != "" || resp.BusinessAddress != "" {
		t.Errorf("customer kept business fields: %+v", resp)
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, catererRequest("+10000000001")); err != nil {
		t.Fatalf("first Register() unexpected error: %v", err)
	}

	_, err := svc.Register(ctx, catererRequest("+10000000001"))
	if !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("second Register() error = %v, want ErrPhoneTaken", err)
	}
}

func TestRegister_ConcurrentDuplicatePhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() unexpected error: %v", err)
	}
	defer db.Close()

	// The phone is free when checked but taken by the time the row is inserted.
	mock.ExpectQuery(`FROM users WHERE phone = \?`).
		WithArgs("+10000000001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	svc := NewAuthService(repository.NewUserRepository(db), testSecret, time.Hour)
	_, err = svc.Register(context.Background(), catererRequest("+10000000001"))
	if !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("Register() error = %v, want ErrPhoneTaken", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, catererRequest("+10000000001"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	resp, err := svc.Login(ctx, model.LoginRequest{Phone: "+10000000001", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login() returned empty token")
	}
	if resp.User.ID != registered.ID {
		t.Errorf("User.ID = %q, want %q", resp.User.ID, registered.ID)
	}

	claims, err := crypto.ValidateToken(resp.Token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken() unexpected error: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, registered.ID)
	}
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, catererRequest("+10000000001")); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	tests := []struct {
		name string
		req  model.LoginRequest
	}{
		{"wrong password", model.LoginRequest{Phone: "+10000000001", Password: "wrong"}},
		{"unknown phone", model.LoginRequest{Phone: "+19999999999", Password: "password123"}},
		{"empty", model.LoginRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, catererRequest("+10000000001"))
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	login, err := svc.Login(ctx, model.LoginRequest{Phone: "+10000000001", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	user, err := svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Authenticate() user = %q, want %q", user.ID, registered.ID)
	}

	if _, err := svc.Authenticate(ctx, "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(garbage) error = %v, want ErrUnauthenticated", err)
	}

	forged, err := crypto.GenerateToken(registered.ID, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(forged) error = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := crypto.GenerateToken("00000000-0000-0000-0000-000000000000", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), token)
	if !errors.Is(err, ErrUserGone) {
		t.Errorf("Authenticate() error = %v, want ErrUserGone", err)
	}
}

func TestToUserResponse_OmitsHash(t *testing.T) {
	resp := ToUserResponse(&model.User{ID: "u1", Username: "Ana", PasswordHash: "secret-hash"})
	if resp.ID != "u1" || resp.Username != "Ana" {
		t.Errorf("unexpected response %+v", resp)
	}
}
