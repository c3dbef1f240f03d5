package store

import (
	"context"
	"strconv"

	"github.com/iliyamo/movie-manager/internal/model"
)

// Document is the remote representation of a movie.  It carries every
// movie field plus imageUrl, the poster reference as a plain string.  The
// document key, not the embedded id, is authoritative on load.
type Document struct {
	model.Movie
	ImageURL string `json:"imageUrl"`
}

// KeyedDocument pairs a document with its key in the collection.
type KeyedDocument struct {
	Key string
	Doc Document
}

// DocumentCollection is one user's remote movie collection.  Keys are the
// decimal movie ids.
type DocumentCollection interface {
	// List returns every document ordered by key.
	List(ctx context.Context) ([]KeyedDocument, error)
	Set(ctx context.Context, key string, doc Document) error
	Delete(ctx context.Context, key string) error
}

// DocumentKey is the collection key for a movie id.
func DocumentKey(id int64) string { return strconv.FormatInt(id, 10) }

// ToDocument builds the remote form of m.
func ToDocument(m model.Movie) Document {
	return Document{Movie: m, ImageURL: m.Image.String()}
}

// FromDocument rebuilds a movie from a stored document.  A key that is not
// a number yields id 0; an unparseable imageUrl yields no image.
func FromDocument(kd KeyedDocument) model.Movie {
	m := kd.Doc.Movie
	id, err := strconv.ParseInt(kd.Key, 10, 64)
	if err != nil {
		id = 0
	}
	m.ID = id
	img, err := model.ParseImageRef(kd.Doc.ImageURL)
	if err != nil {
		img = model.ImageRef{}
	}
	m.Image = img
	return m
}
