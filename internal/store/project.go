package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"folio/internal/models"
)

// ProjectStore handles portfolio project rows.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ProjectPatch carries a partial update. Nil fields keep their value.
type ProjectPatch struct {
	Name        *string
	Description *string
	Link        *string
	Image       *string
	TechStack   *[]string
	Status      *models.ProjectStatus
	SortOrder   *int
}

const projectColumns = `id, name, description, link, image, tech_stack, status, sort_order`

func scanProject(scanner interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p         models.Project
		techStack sql.NullString
	)
	if err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Link, &p.Image, &techStack, &p.Status, &p.SortOrder); err != nil {
		return nil, err
	}
	p.TechStack = decodeList(techStack.String)
	return &p, nil
}

// decodeList reads the serialized tech stack. Older rows may hold a comma
// separated string instead of a JSON array.
func decodeList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		if list == nil {
			return []string{}
		}
		return list
	}
	list = []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// List returns projects ordered by sort order then name. When activeOnly is
// set archived projects are excluded.
func (s *ProjectStore) List(ctx context.Context, activeOnly bool) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if activeOnly {
		query += ` WHERE status = 'active'`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Get retrieves a project by id. Returns nil if not found.
func (s *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Create inserts a project. An empty ID is generated and an empty status
// defaults to active.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if p.ID == "" {
		p.ID = models.NewID()
	}
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	if p.TechStack == nil {
		p.TechStack = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Link, p.Image, encodeList(p.TechStack), p.Status, p.SortOrder)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Update merges the provided fields into an existing project.
func (s *ProjectStore) Update(ctx context.Context, id string, patch ProjectPatch) (*models.Project, error) {
	var techStack *string
	if patch.TechStack != nil {
		encoded := encodeList(*patch.TechStack)
		techStack = &encoded
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			link = COALESCE(?, link),
			image = COALESCE(?, image),
			tech_stack = COALESCE(?, tech_stack),
			status = COALESCE(?, status),
			sort_order = COALESCE(?, sort_order)
		WHERE id = ?
	`, patch.Name, patch.Description, patch.Link, patch.Image, techStack, patch.Status, patch.SortOrder, id)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a project.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
