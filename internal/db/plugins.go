package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/idapm/internal/models"
)

// ErrDuplicate is returned by CreatePlugin when the identifier is taken.
var ErrDuplicate = errors.New("plugin already exists")

// pluginColumns are rewritten on upsert. created_at and added_at are kept.
var pluginColumns = []string{
	"name", "description", "author", "repository_url", "format",
	"ida_version_min", "ida_version_max",
	"installed_version", "latest_version",
	"status", "method", "error_message", "install_path",
	"metadata", "tags", "last_updated", "updated_at",
}

// FindByID returns the plugin with id, or nil when absent.
func (db *DB) FindByID(id string) (*models.Plugin, error) {
	var p models.Plugin
	err := db.First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindAll returns plugins matching filter, ordered by name.
func (db *DB) FindAll(filter models.PluginFilter) ([]models.Plugin, error) {
	q := db.Model(&models.Plugin{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Tag != "" {
		q = q.Where("LOWER(tags) LIKE ? ESCAPE '\\'", `%"`+escapeLike(strings.ToLower(filter.Tag))+`"%`)
	}
	if filter.Query != "" {
		like := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(author) LIKE ? ESCAPE '\\')", like, like, like)
	}

	var plugins []models.Plugin
	err := q.Order("name ASC, id ASC").Find(&plugins).Error
	return plugins, err
}

// CreatePlugin inserts a new plugin. An existing identifier is left untouched
// and ErrDuplicate is returned.
func (db *DB) CreatePlugin(p *models.Plugin) error {
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.ID)
	}
	return nil
}

// Save inserts or updates a plugin by identifier.
func (db *DB) Save(p *models.Plugin) error {
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(pluginColumns),
	}).Create(p).Error
}

// Delete removes a plugin and its history. It reports whether the plugin existed.
func (db *DB) Delete(id string) (bool, error) {
	var found bool
	err := db.Transaction(func(tx *DB) error {
		if err := tx.DB.Where("plugin_id = ?", id).Delete(&models.InstallationHistory{}).Error; err != nil {
			return fmt.Errorf("delete history: %w", err)
		}
		res := tx.DB.Delete(&models.Plugin{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete plugin: %w", res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

// SearchPlugins runs a full-text search over name, description and author,
// best match first.
func (db *DB) SearchPlugins(query string, limit int) ([]models.Plugin, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var ids []string
	err := db.Raw(`
		SELECT p.id
		FROM plugins p
		JOIN plugins_fts fts ON p.rowid = fts.rowid
		WHERE plugins_fts MATCH ?
		ORDER BY bm25(plugins_fts, 10.0, 3.0, 5.0)
		LIMIT ?
	`, ftsQuery, limit).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	if len(ids) == 0 {
		return []models.Plugin{}, nil
	}

	var found []models.Plugin
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Plugin, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	plugins := make([]models.Plugin, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			plugins = append(plugins, p)
		}
	}
	return plugins, nil
}

// prepareFTSQuery turns free text into a prefix-matching FTS5 query.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, term := range strings.Fields(query) {
		term = strings.NewReplacer(`"`, "", "'", "", "(", "", ")", "", "*", "", ":", "", "^", "").Replace(term)
		for _, part := range strings.FieldsFunc(term, func(r rune) bool { return r == '-' || r == '/' || r == '.' }) {
			terms = append(terms, `"`+part+`"*`)
		}
	}
	return strings.Join(terms, " ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
