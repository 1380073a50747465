package repository

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"

	"doisporum/offerscraper/internal/scraper"
	"doisporum/offerscraper/logger"
	apperr "doisporum/offerscraper/pkg/errors"
)

// FileRepository persists the final offer set as CSV and line-delimited JSON
type FileRepository struct {
	log *logger.Logger
}

// NewFileRepository creates a file-backed repository
func NewFileRepository() *FileRepository {
	return &FileRepository{
		log: logger.ForComponent("repository"),
	}
}

// Save writes the sorted offer set to both destinations
func (r *FileRepository) Save(items []scraper.OfferItem, csvPath, jsonlPath string) error {
	if err := r.saveCSV(items, csvPath); err != nil {
		return err
	}
	if err := r.saveJSONL(items, jsonlPath); err != nil {
		return err
	}

	r.log.Info().
		Int("items", len(items)).
		Str("csv", csvPath).
		Str("jsonl", jsonlPath).
		Msg("Saved offers")

	return nil
}

var csvHeader = []string{
	"id", "url", "title", "offer", "description",
	"address", "phone", "website", "images", "images_json",
}

// saveCSV writes tabular rows with a comma-joined images column and a raw
// JSON-array images column.
func (r *FileRepository) saveCSV(items []scraper.OfferItem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.NewRepository(path, "failed to create CSV file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return apperr.NewRepository(path, "failed to write CSV header", err)
	}

	for _, item := range items {
		imagesJSON, err := json.Marshal(imagesOrEmpty(item.Images))
		if err != nil {
			return apperr.NewRepository(path, "failed to marshal images", err)
		}

		row := []string{
			item.Id,
			item.URL,
			item.Title,
			item.Offer,
			item.Description,
			item.Address,
			item.Phone,
			item.Website,
			joinImages(item.Images),
			string(imagesJSON),
		}
		if err := w.Write(row); err != nil {
			return apperr.NewRepository(path, "failed to write CSV row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return apperr.NewRepository(path, "failed to flush CSV", err)
	}
	return nil
}

// saveJSONL writes one JSON record per line
func (r *FileRepository) saveJSONL(items []scraper.OfferItem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.NewRepository(path, "failed to create JSONL file", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return apperr.NewRepository(path, "failed to encode offer", err)
		}
	}
	return nil
}

func joinImages(images []string) string {
	return strings.Join(images, ",")
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
