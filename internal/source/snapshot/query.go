// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Name returns the source identifier.
func (s *Store) Name() string { return Name }

// SearchConcepts matches display names and descriptions case-insensitively.
func (s *Store) SearchConcepts(ctx context.Context, q source.Query, limit int) ([]types.ConceptRecord, error) {
	out := []types.ConceptRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, COALESCE(description, ''), COALESCE(works_count, 0) FROM concepts
		 WHERE (?1 = '' OR instr(lower(display_name), lower(?1)) > 0 OR instr(lower(COALESCE(description, '')), lower(?1)) > 0)
		   AND (?2 = '' OR id = ?2)
		 ORDER BY works_count DESC, id
		 LIMIT ?3`,
		q.Text, source.CanonicalID(q.ConceptID), sqlLimit(limit),
	)
	if err != nil {
		return nil, queryErr("search concepts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c types.ConceptRecord
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Description, &c.WorksCount); err != nil {
			return nil, queryErr("scan concept", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("search concepts", err)
	}
	return out, nil
}

const authorColumns = `id, display_name, COALESCE(works_count, 0), COALESCE(cited_by_count, 0),
	COALESCE(inst_id, ''), COALESCE(inst_name, ''), COALESCE(inst_type, ''), COALESCE(inst_country, '')`

func scanAuthor(sc interface{ Scan(...any) error }) (types.AuthorRecord, error) {
	var a types.AuthorRecord
	var inst types.Institution
	if err := sc.Scan(&a.ID, &a.DisplayName, &a.WorksCount, &a.CitedByCount,
		&inst.ID, &inst.DisplayName, &inst.Type, &inst.CountryCode); err != nil {
		return a, err
	}
	if !inst.IsZero() {
		a.LastKnownInstitution = &inst
	}
	return a, nil
}

// SearchAuthors matches display names, or lists authors linked to the
// query's concept, ordered by works count.
func (s *Store) SearchAuthors(ctx context.Context, q source.Query, limit int) ([]types.AuthorRecord, error) {
	out := []types.AuthorRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors
		 WHERE (?1 = '' OR instr(lower(display_name), lower(?1)) > 0)
		   AND (?2 = '' OR id IN (SELECT author_id FROM author_concepts WHERE concept_id = ?2))
		 ORDER BY works_count DESC, id
		 LIMIT ?3`,
		q.Text, source.CanonicalID(q.ConceptID), sqlLimit(limit),
	)
	if err != nil {
		return nil, queryErr("search authors", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, queryErr("scan author", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("search authors", err)
	}
	for i := range out {
		ids, err := s.conceptLinks(ctx, "author_concepts", "author_id", out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ConceptIDs = ids
	}
	return out, nil
}

const institutionColumns = `id, display_name, COALESCE(type, ''), COALESCE(works_count, 0), COALESCE(cited_by_count, 0),
	latitude, longitude, COALESCE(city, ''), COALESCE(region, ''), COALESCE(country_code, '')`

func scanInstitution(sc interface{ Scan(...any) error }) (types.InstitutionRecord, error) {
	var i types.InstitutionRecord
	var lat, lon sql.NullFloat64
	if err := sc.Scan(&i.ID, &i.DisplayName, &i.Type, &i.WorksCount, &i.CitedByCount,
		&lat, &lon, &i.City, &i.Region, &i.CountryCode); err != nil {
		return i, err
	}
	i.Latitude = floatPtr(lat)
	i.Longitude = floatPtr(lon)
	return i, nil
}

// SearchInstitutions matches display names, or lists institutions linked to
// the query's concept, ordered by works count.
func (s *Store) SearchInstitutions(ctx context.Context, q source.Query, limit int) ([]types.InstitutionRecord, error) {
	out := []types.InstitutionRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions
		 WHERE (?1 = '' OR instr(lower(display_name), lower(?1)) > 0)
		   AND (?2 = '' OR id IN (SELECT institution_id FROM institution_concepts WHERE concept_id = ?2))
		 ORDER BY works_count DESC, id
		 LIMIT ?3`,
		q.Text, source.CanonicalID(q.ConceptID), sqlLimit(limit),
	)
	if err != nil {
		return nil, queryErr("search institutions", err)
	}
	defer rows.Close()

	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, queryErr("scan institution", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("search institutions", err)
	}
	for n := range out {
		ids, err := s.conceptLinks(ctx, "institution_concepts", "institution_id", out[n].ID)
		if err != nil {
			return nil, err
		}
		out[n].ConceptIDs = ids
	}
	return out, nil
}

// Concept returns one concept.
func (s *Store) Concept(ctx context.Context, id string) (types.ConceptRecord, error) {
	var c types.ConceptRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, COALESCE(description, ''), COALESCE(works_count, 0) FROM concepts WHERE id = ?`,
		source.CanonicalID(id),
	).Scan(&c.ID, &c.DisplayName, &c.Description, &c.WorksCount)
	if err != nil {
		return types.ConceptRecord{}, queryErr("concept "+id, err)
	}
	return c, nil
}

// Author returns one author summary.
func (s *Store) Author(ctx context.Context, id string) (types.AuthorRecord, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, source.CanonicalID(id)))
	if err != nil {
		return types.AuthorRecord{}, queryErr("author "+id, err)
	}
	if a.ConceptIDs, err = s.conceptLinks(ctx, "author_concepts", "author_id", a.ID); err != nil {
		return types.AuthorRecord{}, err
	}
	return a, nil
}

// Institution returns one institution.
func (s *Store) Institution(ctx context.Context, id string) (types.InstitutionRecord, error) {
	i, err := scanInstitution(s.db.QueryRowContext(ctx,
		`SELECT `+institutionColumns+` FROM institutions WHERE id = ?`, source.CanonicalID(id)))
	if err != nil {
		return types.InstitutionRecord{}, queryErr("institution "+id, err)
	}
	if i.ConceptIDs, err = s.conceptLinks(ctx, "institution_concepts", "institution_id", i.ID); err != nil {
		return types.InstitutionRecord{}, err
	}
	return i, nil
}

// GroupedCounts counts works published inside window grouped by concept or
// author, ordered by count descending, then key.
func (s *Store) GroupedCounts(ctx context.Context, kind source.Kind, window types.Window) ([]types.GroupCount, error) {
	var query string
	switch kind {
	case source.KindConcept:
		query = `SELECT wc.concept_id, MAX(COALESCE(wc.display_name, '')), COUNT(*) FROM work_concepts wc
			JOIN works w ON w.id = wc.work_id
			WHERE w.published != '' AND w.published BETWEEN ? AND ?
			GROUP BY wc.concept_id ORDER BY COUNT(*) DESC, wc.concept_id`
	case source.KindAuthor:
		query = `SELECT wa.author_id, MAX(COALESCE(wa.author_name, '')), COUNT(*) FROM work_authors wa
			JOIN works w ON w.id = wa.work_id
			WHERE w.published != '' AND w.published BETWEEN ? AND ?
			GROUP BY wa.author_id ORDER BY COUNT(*) DESC, wa.author_id`
	default:
		return nil, fmt.Errorf("snapshot grouped counts by %s: %w", kind, source.ErrUnsupported)
	}

	rows, err := s.db.QueryContext(ctx, query,
		window.From.Format(types.DateLayout), window.To.Format(types.DateLayout))
	if err != nil {
		return nil, queryErr("grouped counts", err)
	}
	defer rows.Close()

	out := []types.GroupCount{}
	for rows.Next() {
		var g types.GroupCount
		if err := rows.Scan(&g.Key, &g.DisplayName, &g.Count); err != nil {
			return nil, queryErr("scan group", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("grouped counts", err)
	}
	return out, nil
}

// ListWorks returns works matching every non-empty filter field, newest
// first. A limit of zero or less returns all matches.
func (s *Store) ListWorks(ctx context.Context, filter source.WorksFilter, limit int) ([]types.WorkRecord, error) {
	out := []types.WorkRecord{}
	if filter.IsEmpty() {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(publication_year, 0), COALESCE(publication_date, ''), COALESCE(cited_by_count, 0)
		 FROM works w
		 WHERE (?1 = '' OR EXISTS (SELECT 1 FROM work_authors wa WHERE wa.work_id = w.id AND wa.author_id = ?1))
		   AND (?2 = '' OR EXISTS (SELECT 1 FROM work_concepts wc WHERE wc.work_id = w.id AND wc.concept_id = ?2))
		 ORDER BY published DESC, id
		 LIMIT ?3`,
		source.CanonicalID(filter.AuthorID), source.CanonicalID(filter.ConceptID), sqlLimit(limit),
	)
	if err != nil {
		return nil, queryErr("list works", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w types.WorkRecord
		if err := rows.Scan(&w.ID, &w.Title, &w.PublicationYear, &w.PublicationDate, &w.CitedByCount); err != nil {
			return nil, queryErr("scan work", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("list works", err)
	}
	rows.Close()

	for i := range out {
		if err := s.loadWorkLinks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadWorkLinks(ctx context.Context, w *types.WorkRecord) error {
	crows, err := s.db.QueryContext(ctx,
		`SELECT concept_id, COALESCE(display_name, ''), COALESCE(score, 0) FROM work_concepts WHERE work_id = ? ORDER BY position`, w.ID)
	if err != nil {
		return queryErr("work concepts", err)
	}
	for crows.Next() {
		var c types.ConceptTag
		if err := crows.Scan(&c.ID, &c.DisplayName, &c.Score); err != nil {
			crows.Close()
			return queryErr("scan work concept", err)
		}
		w.Concepts = append(w.Concepts, c)
	}
	crows.Close()

	arows, err := s.db.QueryContext(ctx,
		`SELECT author_id, COALESCE(author_name, '') FROM work_authors WHERE work_id = ? ORDER BY position`, w.ID)
	if err != nil {
		return queryErr("work authors", err)
	}
	defer arows.Close()
	for arows.Next() {
		var a types.Authorship
		if err := arows.Scan(&a.AuthorID, &a.AuthorName); err != nil {
			return queryErr("scan work author", err)
		}
		w.Authorships = append(w.Authorships, a)
	}
	return arows.Err()
}

func (s *Store) conceptLinks(ctx context.Context, table, column, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT concept_id FROM `+table+` WHERE `+column+` = ? ORDER BY concept_id`, ownerID)
	if err != nil {
		return nil, queryErr(table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, queryErr(table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Dump exports every record held by the store. Database errors yield the
// records read so far.
func (s *Store) Dump() source.Dump {
	ctx := context.Background()
	var d source.Dump

	if rows, err := s.db.QueryContext(ctx, `SELECT id FROM concepts ORDER BY id`); err == nil {
		for _, id := range collectIDs(rows) {
			if c, err := s.Concept(ctx, id); err == nil {
				d.Concepts = append(d.Concepts, c)
			}
		}
	}
	if rows, err := s.db.QueryContext(ctx, `SELECT id FROM authors ORDER BY id`); err == nil {
		for _, id := range collectIDs(rows) {
			if a, err := s.Author(ctx, id); err == nil {
				d.Authors = append(d.Authors, a)
			}
		}
	}
	if rows, err := s.db.QueryContext(ctx, `SELECT id FROM institutions ORDER BY id`); err == nil {
		for _, id := range collectIDs(rows) {
			if i, err := s.Institution(ctx, id); err == nil {
				d.Institutions = append(d.Institutions, i)
			}
		}
	}
	if rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(publication_year, 0), COALESCE(publication_date, ''), COALESCE(cited_by_count, 0)
		 FROM works ORDER BY id`); err == nil {
		var works []types.WorkRecord
		for rows.Next() {
			var w types.WorkRecord
			if rows.Scan(&w.ID, &w.Title, &w.PublicationYear, &w.PublicationDate, &w.CitedByCount) == nil {
				works = append(works, w)
			}
		}
		rows.Close()
		for i := range works {
			if s.loadWorkLinks(ctx, &works[i]) == nil {
				d.Works = append(d.Works, works[i])
			}
		}
	}
	return d
}

func collectIDs(rows *sql.Rows) []string {
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if rows.Scan(&id) == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
