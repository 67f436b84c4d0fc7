package seeder

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/model"
)

// Required header columns of the communes CSV
var requiredColumns = []string{"code_insee", "nom_standard"}

// Parser reads the data.gouv "communes de France" CSV
type Parser struct {
	dataFile      string
	batchSize     int
	minPopulation int
}

// NewParser creates a new parser instance with config
func NewParser(seederCfg config.SeederConfig) *Parser {
	batchSize := seederCfg.BatchSize
	if batchSize <= 0 {
		batchSize = 2000
	}
	return &Parser{
		dataFile:      seederCfg.DataFile,
		batchSize:     batchSize,
		minPopulation: seederCfg.MinPopulation,
	}
}

// ProcessCities streams the data file and hands cities to callback in
// batches. A .zip file is read from its first .csv entry. It returns the
// number of cities passed on.
func (p *Parser) ProcessCities(callback func(batch []model.City) error) (int, error) {
	if strings.HasSuffix(strings.ToLower(p.dataFile), ".zip") {
		return p.processZip(callback)
	}

	file, err := os.Open(p.dataFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", p.dataFile, err)
	}
	defer file.Close()

	return p.processReader(file, callback)
}

func (p *Parser) processZip(callback func(batch []model.City) error) (int, error) {
	r, err := zip.OpenReader(p.dataFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			rc, err := f.Open()
			if err != nil {
				return 0, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.processReader(rc, callback)
		}
	}

	return 0, fmt.Errorf("no csv file found in zip")
}

func (p *Parser) processReader(reader io.Reader, callback func(batch []model.City) error) (int, error) {
	r := csv.NewReader(reader)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		// Exports sometimes start with a byte order mark
		cols[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return 0, fmt.Errorf("missing column %q in header", name)
		}
	}

	batch := make([]model.City, 0, p.batchSize)
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := callback(batch); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}
		total += len(batch)
		batch = make([]model.City, 0, p.batchSize)
		return nil
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		row := csvRow{cols: cols, record: record}
		city, ok := row.city()
		if !ok {
			continue
		}
		if p.minPopulation > 0 && (city.Population == nil || *city.Population < int64(p.minPopulation)) {
			continue
		}

		batch = append(batch, city)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

type csvRow struct {
	cols   map[string]int
	record []string
}

func (r csvRow) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) optStr(name string) *string {
	if v := r.str(name); v != "" {
		return &v
	}
	return nil
}

func (r csvRow) optFloat(name string) *float64 {
	v, err := strconv.ParseFloat(r.str(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func (r csvRow) optInt(name string) *int64 {
	raw := r.str(name)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &v
	}
	// Some exports write populations as 1234.0
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		v := int64(f)
		return &v
	}
	return nil
}

func (r csvRow) city() (model.City, bool) {
	code := r.str("code_insee")
	name := r.str("nom_standard")
	if code == "" || name == "" {
		return model.City{}, false
	}

	return model.City{
		CodeInsee:       code,
		NomStandard:     name,
		RegCode:         r.str("reg_code"),
		RegNom:          r.str("reg_nom"),
		DepCode:         r.str("dep_code"),
		DepNom:          r.str("dep_nom"),
		AcademieNom:     r.optStr("academie_nom"),
		Population:      r.optInt("population"),
		SuperficieKm2:   r.optFloat("superficie_km2"),
		Densite:         r.optFloat("densite"),
		AltitudeMoyenne: r.optFloat("altitude_moyenne"),
		LatitudeMairie:  r.optFloat("latitude_mairie"),
		LongitudeMairie: r.optFloat("longitude_mairie"),
		URLWikipedia:    r.optStr("url_wikipedia"),
		URLVilledereve:  r.optStr("url_villedereve"),
	}, true
}
