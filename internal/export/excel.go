package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fonciercd/cadastre-api/internal/models"
)

const populationSheet = "Population"

var populationHeaders = []string{
	"ID", "Nom", "Postnom", "Prénom", "Sexe", "Date de naissance",
	"Profession", "État civil", "Téléphone", "Nationalité", "Catégorie",
	"Responsable", "Numéro", "Avenue", "Quartier", "Commune",
}

// PopulationWorkbook renders the filtered population into an XLSX workbook
// with one row per person, mirroring the list endpoint's record shape.
func PopulationWorkbook(records []models.PopulationRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(populationSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range populationHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(populationSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, rec := range records {
		values := []interface{}{
			rec.ID,
			deref(rec.Nom),
			deref(rec.Postnom),
			deref(rec.Prenom),
			deref(rec.Sexe),
			deref(rec.DateNaissance),
			deref(rec.Profession),
			deref(rec.EtatCivil),
			deref(rec.Telephone),
			deref(rec.Nationalite),
			rec.Categorie,
			deref(rec.Responsable),
			deref(rec.Adresse.Numero),
			deref(rec.Adresse.Avenue),
			deref(rec.Adresse.Quartier),
			deref(rec.Adresse.Commune),
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell for row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(populationSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
