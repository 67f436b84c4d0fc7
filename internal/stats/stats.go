package stats

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
)

// Stats is a point-in-time snapshot of the service
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
	// DescriptionsByLanguage counts cached descriptions per language code
	DescriptionsByLanguage map[string]int64 `json:"descriptions_by_language"`
	RatedCities            int64            `json:"rated_cities"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// tables are reported in this order
var tables = []string{"cities", "descriptions", "users", "bookmarks", "ratings"}

// Collector gathers Stats from the database and the Go runtime
type Collector struct {
	db        *sqlx.DB
	config    config.DBConfig
	startTime time.Time
	memCache  *cache.Cache
}

const (
	memStatsKey = "mem"
	memStatsTTL = 5 * time.Second
)

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
		memCache:  cache.New(memStatsTTL, time.Minute),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

// collectMemoryStats stops the world, so the result is reused for memStatsTTL
func (c *Collector) collectMemoryStats() MemoryStats {
	if cached, ok := c.memCache.Get(memStatsKey); ok {
		return cached.(MemoryStats)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapInuse:  m.HeapInuse,
	}
	c.memCache.SetDefault(memStatsKey, mem)
	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type: string(c.config.Type),
	}

	if totalSize, err := c.getDatabaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	tableStats, err := c.getTableStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TableStats = tableStats

	for _, ts := range tableStats {
		stats.TotalRecords += ts.RowCount
	}

	byLanguage, err := c.getDescriptionsByLanguage(ctx)
	if err != nil {
		return nil, err
	}
	stats.DescriptionsByLanguage = byLanguage

	if err := c.db.GetContext(ctx, &stats.RatedCities, "SELECT COUNT(DISTINCT insee_code) FROM ratings"); err != nil {
		return nil, fmt.Errorf("failed to count rated cities: %w", err)
	}

	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, "SELECT pg_database_size(current_database())")
	} else {
		err = c.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}

	if err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) getDescriptionsByLanguage(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Language string `db:"language"`
		Count    int64  `db:"count"`
	}
	err := c.db.SelectContext(ctx, &rows, "SELECT language, COUNT(*) AS count FROM descriptions GROUP BY language")
	if err != nil {
		return nil, fmt.Errorf("failed to count descriptions by language: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Language] = r.Count
	}
	return out, nil
}

func (c *Collector) getTableStats(ctx context.Context) ([]TableStat, error) {
	stats := make([]TableStat, 0, len(tables))
	for _, table := range tables {
		stat, err := c.getTableStat(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

func (c *Collector) getTableStat(ctx context.Context, tableName string) (*TableStat, error) {
	stat := &TableStat{Name: tableName}

	if err := c.db.GetContext(ctx, &stat.RowCount, "SELECT COUNT(*) FROM "+tableName); err != nil {
		return nil, err
	}

	// Relation sizes are best effort; dbstat is not compiled into every SQLite build.
	if c.config.Type == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &stat.SizeBytes, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, tableName)
	} else {
		var size *int64
		if err := c.db.GetContext(ctx, &size, `SELECT SUM(pgsize) FROM dbstat WHERE name = ?`, tableName); err == nil && size != nil {
			stat.SizeBytes = *size
		}
	}

	return stat, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
