package principals

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func principalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "username", "display_name", "email",
		"role", "tier", "is_premium", "password_hash", "two_factor_enabled", "created_at",
	})
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+principals\s+WHERE\s+tenant_id\s*=\s*\$1\s+AND\s+username\s*=\s*\$2\s*$`

	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs("tenant-demo", "olga.owner").
		WillReturnRows(principalRows().AddRow(
			"u-owner", "tenant-demo", "olga.owner", "Olga Ozola", "olga@owncent.test",
			"owner", "premium", true, "$argon2id$...", true, created))

	got, err := repo.GetByUsername(context.Background(), "tenant-demo", "olga.owner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u-owner" || got.Role != domain.RoleOwner || got.Tier != domain.TierPremium {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if !got.TwoFactorEnabled {
		t.Fatalf("expected two-factor enabled")
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+principals`).
		WithArgs("tenant-demo", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "tenant-demo", "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+principals`).
		WithArgs("tenant-demo", "u-owner").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), "tenant-demo", "u-owner")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_ReturnsAllRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+principals\s+WHERE\s+tenant_id\s*=\s*\$1\s+ORDER\s+BY\s+username`).
		WithArgs("tenant-demo").
		WillReturnRows(principalRows().
			AddRow("u-manager", "tenant-demo", "maris.manager", "Maris Berzins", "maris@owncent.test",
				"manager", "advanced", false, "hash", false, created).
			AddRow("u-owner", "tenant-demo", "olga.owner", "Olga Ozola", "olga@owncent.test",
				"owner", "premium", true, "hash", true, created))

	got, err := repo.List(context.Background(), "tenant-demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "maris.manager" || got[1].Role != domain.RoleOwner {
		t.Fatalf("unexpected list: %+v", got)
	}
}
