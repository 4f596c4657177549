package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
)

type fakeAdminRepo struct {
	admins map[string]*models.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*models.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *models.Admin) error {
	admin.ID = primitive.NewObjectID()
	r.admins[admin.Email] = admin
	return nil
}

func (r *fakeAdminRepo) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	admin, ok := r.admins[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return admin, nil
}

func seedAdmin(t *testing.T, repo *fakeAdminRepo, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	repo.admins[email] = &models.Admin{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Name:         "Test Admin",
		PasswordHash: string(hash),
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAdminRepo()
	seedAdmin(t, repo, "admin@example.com", "hunter2")

	svc := NewAuthService(repo, "test-secret", time.Hour)

	resp, err := svc.Login(ctx, &models.LoginRequest{Email: "admin@example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not validate: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["email"] != "admin@example.com" {
		t.Fatalf("token email claim %v", claims["email"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAdminRepo()
	seedAdmin(t, repo, "admin@example.com", "hunter2")

	svc := NewAuthService(repo, "test-secret", time.Hour)

	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "admin@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "hunter2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &models.LoginRequest{Email: tc.email, Password: tc.pass})
			if err == nil {
				t.Fatal("expected login to fail")
			}
			if apierr.IsNotFound(err) {
				t.Fatal("login failures must not reveal whether the email exists")
			}
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAdminRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	admin, err := svc.Register(ctx, "new@example.com", "New Admin", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if admin.PasswordHash == "s3cret" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}

	if _, err := svc.Register(ctx, "new@example.com", "Again", "other"); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
