package sitepress

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = content.ErrNotFound

// Store wraps a SQLite database holding articles, leads, and image metadata.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ intake.LeadStore = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies pending migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// WAL lets the public pages read while the admin writes. The busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbArticle is an article as stored in the articles table.
type dbArticle struct {
	Seq             int64  `db:"seq"`
	ID              string `db:"id"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	Category        string `db:"category"`
	Excerpt         string `db:"excerpt"`
	Content         string `db:"content"`
	FeaturedImage   string `db:"featured_image"`
	MetaDescription string `db:"meta_description"`
	Keywords        string `db:"keywords"`
	Status          string `db:"status"`
	PublishDate     string `db:"publish_date"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
	Views           int    `db:"views"`
}

const articleColumns = `seq, id, title, author, category, excerpt, content, featured_image,
	meta_description, keywords, status, publish_date, created_at, updated_at, views`

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toArticle(r dbArticle) content.Article {
	return content.Article{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		Category:        r.Category,
		Excerpt:         r.Excerpt,
		Content:         r.Content,
		FeaturedImage:   r.FeaturedImage,
		MetaDescription: r.MetaDescription,
		Keywords:        r.Keywords,
		Status:          content.ParseStatus(r.Status),
		PublishDate:     parseTime(r.PublishDate),
		CreatedAt:       parseTime(r.CreatedAt),
		UpdatedAt:       parseTime(r.UpdatedAt),
		Views:           r.Views,
	}
}

func fromArticle(a content.Article) dbArticle {
	return dbArticle{
		ID:              a.ID,
		Title:           a.Title,
		Author:          a.Author,
		Category:        a.Category,
		Excerpt:         a.Excerpt,
		Content:         a.Content,
		FeaturedImage:   a.FeaturedImage,
		MetaDescription: a.MetaDescription,
		Keywords:        a.Keywords,
		Status:          string(a.Status),
		PublishDate:     formatTime(a.PublishDate),
		CreatedAt:       formatTime(a.CreatedAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
		Views:           a.Views,
	}
}

// SaveArticle inserts a new article or replaces the one with the same id in
// place. A missing id is generated. CreatedAt is set once; UpdatedAt is
// refreshed on every save. The stored article is returned.
func (s *Store) SaveArticle(a content.Article) (content.Article, error) {
	return s.saveArticle(a, false)
}

// UpdateArticle replaces an existing article and returns ErrNotFound when the
// id is unknown.
func (s *Store) UpdateArticle(a content.Article) (content.Article, error) {
	if a.ID == "" {
		return content.Article{}, ErrNotFound
	}
	return s.saveArticle(a, true)
}

func (s *Store) saveArticle(a content.Article, mustExist bool) (content.Article, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return content.Article{}, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	if a.ID == "" {
		a.ID = content.NewID()
	}
	a.Status = content.ParseStatus(string(a.Status))
	if a.PublishDate.IsZero() {
		a.PublishDate = now
	}
	a.UpdatedAt = now

	var existing dbArticle
	err = tx.Get(&existing, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, a.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if mustExist {
			return content.Article{}, ErrNotFound
		}
		a.CreatedAt = now
		a.Views = 0
		_, err = tx.NamedExec(`INSERT INTO articles
			(id, title, author, category, excerpt, content, featured_image, meta_description, keywords, status, publish_date, created_at, updated_at, views)
			VALUES (:id, :title, :author, :category, :excerpt, :content, :featured_image, :meta_description, :keywords, :status, :publish_date, :created_at, :updated_at, :views)`,
			fromArticle(a))
		if err != nil {
			return content.Article{}, fmt.Errorf("insert article %s: %w", a.ID, err)
		}
	case err != nil:
		return content.Article{}, fmt.Errorf("load article %s: %w", a.ID, err)
	default:
		prev := toArticle(existing)
		a.CreatedAt = prev.CreatedAt
		a.Views = prev.Views
		_, err = tx.NamedExec(`UPDATE articles SET
			title = :title, author = :author, category = :category, excerpt = :excerpt,
			content = :content, featured_image = :featured_image, meta_description = :meta_description,
			keywords = :keywords, status = :status, publish_date = :publish_date, updated_at = :updated_at
			WHERE id = :id`, fromArticle(a))
		if err != nil {
			return content.Article{}, fmt.Errorf("update article %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return content.Article{}, fmt.Errorf("commit article %s: %w", a.ID, err)
	}
	return a, nil
}

// ListArticles returns the articles matching filter, most recently added first.
func (s *Store) ListArticles(filter content.Filter) ([]content.Article, error) {
	var rows []dbArticle
	var err error
	if filter == content.FilterPublished || filter == content.FilterDraft {
		err = s.db.Select(&rows, `SELECT `+articleColumns+` FROM articles WHERE status = ? ORDER BY seq DESC`, string(filter))
	} else {
		err = s.db.Select(&rows, `SELECT `+articleColumns+` FROM articles ORDER BY seq DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	articles := make([]content.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, toArticle(r))
	}
	return articles, nil
}

// GetArticle returns a single article regardless of status. It does not
// count as a view.
func (s *Store) GetArticle(id string) (content.Article, error) {
	var r dbArticle
	err := s.db.Get(&r, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Article{}, ErrNotFound
	}
	if err != nil {
		return content.Article{}, fmt.Errorf("get article %s: %w", id, err)
	}
	return toArticle(r), nil
}

// ViewArticle records one read-detail access and returns the article with the
// incremented view count.
func (s *Store) ViewArticle(id string) (content.Article, error) {
	res, err := s.db.Exec(`UPDATE articles SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return content.Article{}, fmt.Errorf("count view %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return content.Article{}, ErrNotFound
	}
	return s.GetArticle(id)
}

// DeleteArticle removes an article. Deleting a missing id is not an error.
func (s *Store) DeleteArticle(id string) error {
	if _, err := s.db.Exec(`DELETE FROM articles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	return nil
}

// ArticleStats counts the current articles by status.
func (s *Store) ArticleStats() (content.Stats, error) {
	articles, err := s.ListArticles(content.FilterAll)
	if err != nil {
		return content.Stats{}, err
	}
	return content.ComputeStats(articles), nil
}

type dbLead struct {
	Seq       int64  `db:"seq"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Company   string `db:"company"`
	Message   string `db:"message"`
	Timestamp string `db:"timestamp"`
	Page      string `db:"page"`
	Fields    string `db:"fields"`
}

// AppendLead stores a lead after every lead already captured.
func (s *Store) AppendLead(l intake.Lead) (intake.Lead, error) {
	fields, err := json.Marshal(l.Fields)
	if err != nil {
		return intake.Lead{}, fmt.Errorf("encode lead fields: %w", err)
	}
	_, err = s.db.NamedExec(`INSERT INTO leads (name, email, company, message, timestamp, page, fields)
		VALUES (:name, :email, :company, :message, :timestamp, :page, :fields)`, dbLead{
		Name:      l.Name,
		Email:     l.Email,
		Company:   l.Company,
		Message:   l.Message,
		Timestamp: formatTime(l.Timestamp),
		Page:      l.Page,
		Fields:    string(fields),
	})
	if err != nil {
		return intake.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return l, nil
}

// ListLeads returns every captured lead in capture order, duplicates included.
func (s *Store) ListLeads() ([]intake.Lead, error) {
	var rows []dbLead
	if err := s.db.Select(&rows, `SELECT seq, name, email, company, message, timestamp, page, fields FROM leads ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]intake.Lead, 0, len(rows))
	for _, r := range rows {
		l := intake.Lead{
			Name:      r.Name,
			Email:     r.Email,
			Company:   r.Company,
			Message:   r.Message,
			Timestamp: parseTime(r.Timestamp),
			Page:      r.Page,
		}
		if r.Fields != "" && r.Fields != "null" {
			if err := json.Unmarshal([]byte(r.Fields), &l.Fields); err != nil {
				return nil, fmt.Errorf("decode lead %d fields: %w", r.Seq, err)
			}
		}
		leads = append(leads, l)
	}
	return leads, nil
}

// ClearLeads deletes every captured lead and returns how many were removed.
func (s *Store) ClearLeads() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM leads`)
	if err != nil {
		return 0, fmt.Errorf("clear leads: %w", err)
	}
	return res.RowsAffected()
}

// SaveImage upserts image metadata.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.NamedExec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at)
		VALUES (:filename, :original_name, :width, :height, :size, :uploaded_at)`, img)
	if err != nil {
		return fmt.Errorf("save image %s: %w", img.Filename, err)
	}
	return nil
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	var images []Image
	if err := s.db.Select(&images, `SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	if _, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("delete image %s: %w", filename, err)
	}
	return nil
}
