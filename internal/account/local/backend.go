// Package local keeps accounts and lists in a SQLite database on this
// machine. It applies the same rules a hosted account API would: slugs are
// derived once from the name and kept unique per user, and list membership
// is deduplicated by catalog entry.
package local

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmcdole/marquee/internal/domain"
)

// Backend implements domain.ListClient and domain.AuthClient over SQLite.
// Mutations act for the user whose credential the session store holds.
type Backend struct {
	db      *sql.DB
	session domain.SessionStore
	logger  *slog.Logger
}

// NewBackend opens the database at dbPath
func NewBackend(dbPath string, session domain.SessionStore, logger *slog.Logger) (*Backend, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	return NewBackendDB(db, session, logger), nil
}

// NewBackendDB wraps an already opened database
func NewBackendDB(db *sql.DB, session domain.SessionStore, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, session: session, logger: logger}
}

// Close closes the database
func (b *Backend) Close() error {
	return b.db.Close()
}

// === Auth ===

// SignUp creates an account and returns a new session token
func (b *Backend) SignUp(ctx context.Context, email, name, password string) (string, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return "", domain.NewAPIError(http.StatusBadRequest, "a valid email is required")
	}
	if len(password) < 8 {
		return "", domain.NewAPIError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	id, err := newRandomID("usr")
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewAPIError(http.StatusBadRequest, err.Error())
	}

	_, err = b.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash) VALUES (?, ?, ?, ?)`,
		id, email, name, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.NewAPIError(http.StatusConflict, "an account with this email already exists")
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	b.logger.Info("created account", "user", id)
	return b.newSession(ctx, id)
}

// SignIn checks the password and returns a new session token
func (b *Backend) SignIn(ctx context.Context, email, password string) (string, error) {
	var id, hash string
	err := b.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, strings.TrimSpace(email)).
		Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", invalidCredentials()
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", invalidCredentials()
	}
	return b.newSession(ctx, id)
}

// Resolve maps a credential to its user. Unknown credentials are anonymous.
func (b *Backend) Resolve(ctx context.Context, credential string) (domain.AuthUser, error) {
	if credential == "" {
		return domain.Anonymous(), nil
	}
	var u domain.User
	err := b.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, credential).Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Anonymous(), nil
	}
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to resolve session: %w", err)
	}
	return domain.Authenticated(u), nil
}

// SignOut deletes the current session
func (b *Backend) SignOut(ctx context.Context) error {
	credential, ok := b.session.Credential()
	if !ok {
		return nil
	}
	if _, err := b.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, credential); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (b *Backend) newSession(ctx context.Context, userID string) (string, error) {
	token, err := randomHex(32)
	if err != nil {
		return "", err
	}
	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id) VALUES (?, ?)`, token, userID); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// userFor resolves a credential to a user id or a 401
func (b *Backend) userFor(ctx context.Context, credential string) (string, error) {
	au, err := b.Resolve(ctx, credential)
	if err != nil {
		return "", err
	}
	if !au.Auth {
		return "", domain.NewAPIError(http.StatusUnauthorized, "sign in to manage lists")
	}
	return au.User.ID, nil
}

func (b *Backend) currentUser(ctx context.Context) (string, error) {
	credential, _ := b.session.Credential()
	return b.userFor(ctx, credential)
}

// === Lists ===

// GetAll returns every list of the credential's user, oldest first
func (b *Backend) GetAll(ctx context.Context, credential string) ([]domain.List, error) {
	userID, err := b.userFor(ctx, credential)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		`SELECT id, slug, name FROM lists WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	var lists []domain.List
	for rows.Next() {
		var l domain.List
		if err := rows.Scan(&l.ID, &l.Slug, &l.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan list row: %w", err)
		}
		lists = append(lists, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list rows: %w", err)
	}

	for i := range lists {
		if lists[i].Items, err = b.items(ctx, lists[i].ID); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// Create makes a list with a slug derived from name, unique for the user
func (b *Backend) Create(ctx context.Context, name string) (domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.List{}, domain.NewAPIError(http.StatusBadRequest, domain.ErrInvalidName.Error())
	}
	userID, err := b.currentUser(ctx)
	if err != nil {
		return domain.List{}, err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.List{}, err
	}
	defer tx.Rollback()

	slug, err := uniqueSlug(Slugify(name), func(s string) (bool, error) {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM lists WHERE user_id = ? AND slug = ?`, userID, s).Scan(&n)
		return n > 0, err
	})
	if err != nil {
		return domain.List{}, fmt.Errorf("failed to derive slug: %w", err)
	}

	id, err := newRandomID("lst")
	if err != nil {
		return domain.List{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lists (id, user_id, slug, name) VALUES (?, ?, ?, ?)`, id, userID, slug, name); err != nil {
		return domain.List{}, fmt.Errorf("failed to create list: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.List{}, err
	}

	b.logger.Info("created list", "slug", slug, "user", userID)
	return domain.List{ID: id, Slug: slug, Name: name, Items: []domain.ListItem{}}, nil
}

// Update renames a list. The slug never changes.
func (b *Backend) Update(ctx context.Context, slug, name string) (domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.List{}, domain.NewAPIError(http.StatusBadRequest, domain.ErrInvalidName.Error())
	}
	l, err := b.owned(ctx, slug)
	if err != nil {
		return domain.List{}, err
	}
	if _, err := b.db.ExecContext(ctx, `UPDATE lists SET name = ? WHERE id = ?`, name, l.ID); err != nil {
		return domain.List{}, fmt.Errorf("failed to rename list: %w", err)
	}
	l.Name = name
	return b.withItems(ctx, l)
}

// Delete removes a list and its items
func (b *Backend) Delete(ctx context.Context, slug string) error {
	l, err := b.owned(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, l.ID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	b.logger.Info("deleted list", "slug", slug)
	return nil
}

// AddItem appends item unless the list already holds that catalog entry
func (b *Backend) AddItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	if err := validItem(item); err != nil {
		return domain.List{}, err
	}
	l, err := b.owned(ctx, slug)
	if err != nil {
		return domain.List{}, err
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO list_items (list_id, position, tmdb_id, type, title, sub_title, poster)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM list_items WHERE list_id = ?), ?, ?, ?, ?, ?)
		ON CONFLICT (list_id, tmdb_id, type) DO NOTHING`,
		l.ID, l.ID, item.TmdbID, item.Type.String(), item.Title, item.SubTitle, item.Poster)
	if err != nil {
		return domain.List{}, fmt.Errorf("failed to add item: %w", err)
	}
	return b.withItems(ctx, l)
}

// RemoveItem removes the item's catalog entry from the list
func (b *Backend) RemoveItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	l, err := b.owned(ctx, slug)
	if err != nil {
		return domain.List{}, err
	}
	if _, err := b.db.ExecContext(ctx,
		`DELETE FROM list_items WHERE list_id = ? AND tmdb_id = ? AND type = ?`,
		l.ID, item.TmdbID, item.Type.String()); err != nil {
		return domain.List{}, fmt.Errorf("failed to remove item: %w", err)
	}
	return b.withItems(ctx, l)
}

// owned loads the current user's list with the given slug, without items
func (b *Backend) owned(ctx context.Context, slug string) (domain.List, error) {
	userID, err := b.currentUser(ctx)
	if err != nil {
		return domain.List{}, err
	}
	var l domain.List
	err = b.db.QueryRowContext(ctx,
		`SELECT id, slug, name FROM lists WHERE user_id = ? AND slug = ?`, userID, slug).
		Scan(&l.ID, &l.Slug, &l.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.List{}, domain.NewAPIError(http.StatusNotFound, fmt.Sprintf("no list %q", slug))
	}
	if err != nil {
		return domain.List{}, fmt.Errorf("failed to load list: %w", err)
	}
	return l, nil
}

func (b *Backend) withItems(ctx context.Context, l domain.List) (domain.List, error) {
	items, err := b.items(ctx, l.ID)
	if err != nil {
		return domain.List{}, err
	}
	l.Items = items
	return l, nil
}

func (b *Backend) items(ctx context.Context, listID string) ([]domain.ListItem, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT tmdb_id, type, title, sub_title, poster
		FROM list_items WHERE list_id = ? ORDER BY position`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer rows.Close()

	items := []domain.ListItem{}
	for rows.Next() {
		var (
			it       domain.ListItem
			typ      string
			sub, pst sql.NullString
		)
		if err := rows.Scan(&it.TmdbID, &typ, &it.Title, &sub, &pst); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		if it.Type, err = domain.ParseCategory(typ); err != nil {
			return nil, err
		}
		if sub.Valid {
			it.SubTitle = &sub.String
		}
		if pst.Valid {
			it.Poster = &pst.String
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list items: %w", err)
	}
	return items, nil
}

func validItem(item domain.ListItem) error {
	if item.TmdbID <= 0 {
		return domain.NewAPIError(http.StatusBadRequest, domain.ErrInvalidID.Error())
	}
	if item.Type == domain.CategoryAll {
		return domain.NewAPIError(http.StatusBadRequest, "item has no category")
	}
	return nil
}

func invalidCredentials() error {
	return domain.NewAPIError(http.StatusUnauthorized, "invalid email or password")
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
