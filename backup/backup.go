package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"autoparts/database"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	filePrefix = "autoparts_backup_"
	fileLayout = "20060102_150405"
)

var (
	ErrInvalidName = errors.New("invalid backup file name")
	ErrNotFound    = errors.New("backup file not found")
	ErrNotBackup   = errors.New("file is not an autoparts database")

	namePattern = regexp.MustCompile(`^autoparts_backup_\d{8}_\d{6}(_\d+)?\.db$`)
)

// Info describes one backup file.
type Info struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// Service makes and restores copies of the live database. The folder is
// looked up on every call, so a changed setting applies at once.
type Service struct {
	db  *sqlx.DB
	dir func() string
	now func() time.Time
}

func NewService(db *sqlx.DB, dir func() string) *Service {
	return &Service{db: db, dir: dir, now: time.Now}
}

// FixedDir is a dir func for a folder that never changes.
func FixedDir(path string) func() string {
	return func() string { return path }
}

func (s *Service) Dir() string { return s.dir() }

// Create writes a consistent copy of the database with VACUUM INTO while it stays online.
func (s *Service) Create(ctx context.Context) (*Info, error) {
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := filePrefix + s.now().Format(fileLayout)
	path := filepath.Join(dir, base+".db")
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.db", base, i))
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return nil, fmt.Errorf("backup failed: %w", err)
	}
	info, err := stat(path)
	if err != nil {
		return nil, err
	}
	zap.L().Named("backup").Info("backup created", zap.String("path", path), zap.Int64("size", info.Size))
	return info, nil
}

// List returns the backups in the directory, newest first.
func (s *Service) List() ([]Info, error) {
	dir := s.Dir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, err
	}

	list := []Info{}
	for _, e := range entries {
		if e.IsDir() || !namePattern.MatchString(e.Name()) {
			continue
		}
		info, err := stat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		list = append(list, *info)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Modified != list[j].Modified {
			return list[i].Modified > list[j].Modified
		}
		return list[i].Name > list[j].Name
	})
	return list, nil
}

// Path resolves a backup file name inside the directory.
func (s *Service) Path(name string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", ErrInvalidName
	}
	path := filepath.Join(s.Dir(), name)
	if !fileExists(path) {
		return "", ErrNotFound
	}
	return path, nil
}

// Delete removes one backup by name.
func (s *Service) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	zap.L().Named("backup").Info("backup deleted", zap.String("name", name))
	return nil
}

// Cleanup keeps the newest keep backups and deletes the rest. keep <= 0 keeps everything.
func (s *Service) Cleanup(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	list, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range list[min(keep, len(list)):] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", b.Name, err)
		}
		removed++
	}
	if removed > 0 {
		zap.L().Named("backup").Info("old backups removed", zap.Int("removed", removed), zap.Int("kept", keep))
	}
	return removed, nil
}

// Restore replaces the contents of every table with the backup at path.
// A safety backup of the current data is taken first; the copy itself runs in
// one transaction, so a failed restore leaves the live data untouched.
func (s *Service) Restore(ctx context.Context, path string) (safety *Info, err error) {
	if !fileExists(path) {
		return nil, ErrNotFound
	}
	if safety, err = s.Create(ctx); err != nil {
		return nil, fmt.Errorf("safety backup failed: %w", err)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return safety, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `ATTACH DATABASE ? AS bak`, path); err != nil {
		return safety, fmt.Errorf("failed to open backup: %w", err)
	}
	defer conn.ExecContext(context.Background(), `DETACH DATABASE bak`)

	var n int
	if err := conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM bak.sqlite_master WHERE type = 'table' AND name = 'parts'`); err != nil {
		return safety, fmt.Errorf("%w: %v", ErrNotBackup, err)
	}
	if n == 0 {
		return safety, ErrNotBackup
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return safety, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return safety, err
	}
	for i := len(database.Tables) - 1; i >= 0; i-- {
		if _, err = tx.ExecContext(ctx, `DELETE FROM main.`+database.Tables[i]); err != nil {
			return safety, fmt.Errorf("failed to clear %s: %w", database.Tables[i], err)
		}
	}
	for _, table := range database.Tables {
		if err = copyTable(ctx, tx, table); err != nil {
			return safety, err
		}
	}
	if err = tx.Commit(); err != nil {
		return safety, fmt.Errorf("failed to commit restore: %w", err)
	}

	zap.L().Named("backup").Info("database restored", zap.String("from", path), zap.String("safety", safety.Path))
	return safety, nil
}

// copyTable copies the columns both schemas share, so backups taken before a
// column was added still restore.
func copyTable(ctx context.Context, tx *sqlx.Tx, table string) error {
	var live, saved []string
	if err := tx.SelectContext(ctx, &live, `SELECT name FROM pragma_table_info(?, 'main')`, table); err != nil {
		return err
	}
	if err := tx.SelectContext(ctx, &saved, `SELECT name FROM pragma_table_info(?, 'bak')`, table); err != nil {
		return err
	}
	if len(saved) == 0 {
		return nil
	}

	inBackup := make(map[string]bool, len(saved))
	for _, c := range saved {
		inBackup[c] = true
	}
	var cols []string
	for _, c := range live {
		if inBackup[c] {
			cols = append(cols, c)
		}
	}
	list := strings.Join(cols, ", ")
	query := fmt.Sprintf(`INSERT INTO main.%s (%s) SELECT %s FROM bak.%s`, table, list, list, table)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to restore %s: %w", table, err)
	}
	return nil
}

func stat(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Info{
		Name:     fi.Name(),
		Path:     path,
		Size:     fi.Size(),
		Modified: fi.ModTime().Format("2006-01-02T15:04:05.000"),
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
