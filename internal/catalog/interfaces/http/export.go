package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	catalog "pokefinder-cloud/internal/catalog/domain"
	"pokefinder-cloud/internal/observability/metrics"
)

var exportColumns = []string{"Pokemon", "Lat", "Long", "Type", "Location", "Moves", "Sprite"}

// BuildCatalogCSV renders the catalog in the same column layout the importer
// accepts, so an export can be re-imported.
func BuildCatalogCSV(entities []catalog.Pokemon) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for i := range entities {
		entity := &entities[i]
		var lat, lng string
		if entity.HasCoordinate() {
			lat = strconv.FormatFloat(entity.Coordinate.Latitude, 'f', -1, 64)
			lng = strconv.FormatFloat(entity.Coordinate.Longitude, 'f', -1, 64)
		}
		moves := ""
		if len(entity.Moves) > 0 {
			encoded, err := json.Marshal(entity.Moves)
			if err != nil {
				return nil, err
			}
			moves = string(encoded)
		}
		record := []string{entity.Name, lat, lng, entity.TypePrimary, entity.LocationName, moves, entity.Sprite}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildCatalogXLSX renders the catalog as a workbook.
func BuildCatalogXLSX(entities []catalog.Pokemon) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "catalog"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Type", "Secondary Type", "Latitude", "Longitude", "Location", "Source", "Favorite"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for i := range entities {
		entity := &entities[i]
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entity.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entity.TypePrimary)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entity.TypeSecondary)
		if entity.HasCoordinate() {
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), entity.Coordinate.Latitude)
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), entity.Coordinate.Longitude)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), entity.LocationName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), string(entity.Source))
		_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", row), entity.IsFavorite)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildEntityCardPDF renders a one-page detail card for a single entity.
func BuildEntityCardPDF(entity *catalog.Pokemon) ([]byte, error) {
	if entity == nil {
		return nil, errors.New("catalog: nil entity")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, entity.Name)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)

	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %s", label, value))
		pdf.Ln(6)
	}

	typeLabel := entity.TypePrimary
	if entity.TypeSecondary != "" {
		typeLabel += " / " + entity.TypeSecondary
	}
	line("Type", typeLabel)
	line("Category", entity.Category)
	if entity.Height > 0 {
		line("Height", fmt.Sprintf("%.1f m", entity.Height))
	}
	if entity.Weight > 0 {
		line("Weight", fmt.Sprintf("%.1f kg", entity.Weight))
	}
	if entity.HasCoordinate() {
		line("Coordinates", fmt.Sprintf("%.5f, %.5f", entity.Coordinate.Latitude, entity.Coordinate.Longitude))
	}
	line("Location", entity.LocationName)
	line("Abilities", strings.Join(entity.Abilities, ", "))
	line("Moves", strings.Join(entity.Moves, ", "))
	line("Source", string(entity.Source))

	if len(entity.Stats) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(60, 6, "Stat", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Value", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 11)
		for _, stat := range []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"} {
			value, ok := entity.Stats[stat]
			if !ok {
				continue
			}
			pdf.CellFormat(60, 6, stat, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, strconv.Itoa(value), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Printf("export csv: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	payload, err := BuildCatalogCSV(entities)
	if err != nil {
		h.logger.Printf("build csv: %v", err)
		metrics.ObserveExport("csv", "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("csv", "")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="pokemon.csv"`)
	_, _ = w.Write(payload)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Printf("export xlsx: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	payload, err := BuildCatalogXLSX(entities)
	if err != nil {
		h.logger.Printf("build xlsx: %v", err)
		metrics.ObserveExport("xlsx", "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("xlsx", "")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pokemon.xlsx"`)
	_, _ = w.Write(payload)
}

func (h *Handler) handleCardPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entity, err := h.service.Get(r.Context(), id, "")
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("card pdf %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	payload, err := BuildEntityCardPDF(entity)
	if err != nil {
		h.logger.Printf("build card pdf: %v", err)
		metrics.ObserveExport("pdf", "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("pdf", "")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entity.Name+".pdf"))
	_, _ = w.Write(payload)
}
