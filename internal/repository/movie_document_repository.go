package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/movie-manager/internal/store"
)

// MovieDocumentRepo stores remote movie documents in the
// `movie_documents` table, one row per (user, document key).
type MovieDocumentRepo struct{ DB *sql.DB }

func NewMovieDocumentRepo(db *sql.DB) *MovieDocumentRepo { return &MovieDocumentRepo{DB: db} }

// Collection returns the document collection of userID.  It satisfies
// store.CollectionFunc.
func (r *MovieDocumentRepo) Collection(userID uint64) store.DocumentCollection {
	return &MovieDocuments{db: r.DB, userID: userID}
}

// MovieDocuments is one user's slice of the movie_documents table.
type MovieDocuments struct {
	db     *sql.DB
	userID uint64
}

// List returns the user's documents ordered by key.
func (d *MovieDocuments) List(ctx context.Context) ([]store.KeyedDocument, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT doc_id, body FROM movie_documents WHERE user_id=? ORDER BY doc_id",
		d.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.KeyedDocument
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, err
		}
		var doc store.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", key, err)
		}
		out = append(out, store.KeyedDocument{Key: key, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Set inserts or replaces a document.
func (d *MovieDocuments) Set(ctx context.Context, key string, doc store.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO movie_documents (user_id, doc_id, body) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = CURRENT_TIMESTAMP`,
		d.userID, key, body)
	return err
}

// Delete removes a document.  Deleting a missing key is not an error.
func (d *MovieDocuments) Delete(ctx context.Context, key string) error {
	_, err := d.db.ExecContext(ctx,
		"DELETE FROM movie_documents WHERE user_id=? AND doc_id=?",
		d.userID, key)
	return err
}
