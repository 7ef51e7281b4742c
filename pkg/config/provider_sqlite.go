package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
// The schema is a single-row layout: one sites row joined to its analysis
// defaults, HTTP listener, and CSV column mapping.
func (s *SQLiteProvider) LoadConfig() (*Data, error) {
	config := &Data{}

	site, err := s.getSite()
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	config.Site = *site

	if err := s.getAnalysis(&config.Analysis); err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}
	if err := s.getServer(config); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := s.getCSV(&config.CSV); err != nil {
		return nil, fmt.Errorf("failed to load csv config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.dbPath, err)
	}

	return config, nil
}

func (s *SQLiteProvider) getSite() (*SiteData, error) {
	query := `
		SELECT name, latitude, longitude, timezone
		FROM sites
		WHERE id = (SELECT site_id FROM configs WHERE name = 'default')
	`

	site := &SiteData{}
	var timezone sql.NullString
	err := s.db.QueryRow(query).Scan(&site.Name, &site.Latitude, &site.Longitude, &timezone)
	if err != nil {
		return nil, err
	}
	if timezone.Valid {
		site.Timezone = timezone.String
	}
	return site, nil
}

func (s *SQLiteProvider) getAnalysis(out *AnalysisData) error {
	query := `
		SELECT bandwidth, grid_size, resamples, seed, run_on_start
		FROM analysis_defaults
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var bandwidth sql.NullFloat64
	var gridSize, resamples, seed sql.NullInt64
	var runOnStart sql.NullBool
	err := s.db.QueryRow(query).Scan(&bandwidth, &gridSize, &resamples, &seed, &runOnStart)
	if err == sql.ErrNoRows {
		return nil // package defaults apply
	}
	if err != nil {
		return err
	}

	if bandwidth.Valid {
		out.Bandwidth = bandwidth.Float64
	}
	if gridSize.Valid {
		out.GridSize = int(gridSize.Int64)
	}
	if resamples.Valid {
		out.Resamples = int(resamples.Int64)
	}
	if seed.Valid {
		out.Seed = seed.Int64
	}
	if runOnStart.Valid {
		out.RunOnStart = runOnStart.Bool
	}
	return nil
}

func (s *SQLiteProvider) getServer(out *Data) error {
	query := `
		SELECT listen_addr, database_dsn, data_file
		FROM server
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var listenAddr, dsn, dataFile sql.NullString
	err := s.db.QueryRow(query).Scan(&listenAddr, &dsn, &dataFile)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if listenAddr.Valid {
		out.HTTP.ListenAddr = listenAddr.String
	}
	if dsn.Valid {
		out.Database.DSN = dsn.String
	}
	if dataFile.Valid {
		out.DataFile = dataFile.String
	}
	return nil
}

func (s *SQLiteProvider) getCSV(out *CSVData) error {
	query := `
		SELECT species_column, camera_column, date_column, time_column, date_format, lenient
		FROM csv_mapping
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var species, camera, date, timeCol, dateFormat sql.NullString
	var lenient sql.NullBool
	err := s.db.QueryRow(query).Scan(&species, &camera, &date, &timeCol, &dateFormat, &lenient)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if species.Valid {
		out.SpeciesColumn = species.String
	}
	if camera.Valid {
		out.CameraColumn = camera.String
	}
	if date.Valid {
		out.DateColumn = date.String
	}
	if timeCol.Valid {
		out.TimeColumn = timeCol.String
	}
	if dateFormat.Valid {
		out.DateFormat = dateFormat.String
	}
	if lenient.Valid {
		out.Lenient = lenient.Bool
	}
	return nil
}

// IsReadOnly returns false; the SQLite backend can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
