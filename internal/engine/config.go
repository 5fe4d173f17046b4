package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tactics-client/internal/systems"
)

// Config хранит параметры запуска ядра.
//
// Геометрия задается в экранных координатах той плоскости, на которую
// рендер проецирует указатель. Значения по умолчанию соответствуют
// стандартной доске 7x8 с четырьмя рядами игрока и скамейкой на 9 слотов.
type Config struct {
	// Размеры доски
	BoardWidth int `yaml:"boardWidth"`
	TotalRows  int `yaml:"totalRows"`
	PlayerRows int `yaml:"playerRows"`
	BenchSize  int `yaml:"benchSize"`

	// Правила юнитов
	MaxStars int `yaml:"maxStars"`
	ItemCap  int `yaml:"itemCap"`

	// Жесты
	// DragThresholdPx - расстояние от точки нажатия, после которого
	// Pending становится Active. Единственный триггер перехода.
	DragThresholdPx float64 `yaml:"dragThresholdPx"`
	SnapRadiusPx    float64 `yaml:"snapRadiusPx"`

	// Геометрия
	TileSizePx   float64 `yaml:"tileSizePx"`
	BoardOriginX float64 `yaml:"boardOriginX"`
	BoardOriginY float64 `yaml:"boardOriginY"`
	// BenchGapPx - зазор между нижним рядом доски и полосой скамейки.
	BenchGapPx float64 `yaml:"benchGapPx"`

	// Зона продажи. Если ширина нулевая, зона считается выключенной.
	SellZoneX float64 `yaml:"sellZoneX"`
	SellZoneY float64 `yaml:"sellZoneY"`
	SellZoneW float64 `yaml:"sellZoneW"`
	SellZoneH float64 `yaml:"sellZoneH"`

	// SnapshotBuffer - емкость буфера входящих снапшотов.
	// При переполнении вытесняется самый старый: клиенту важен последний.
	SnapshotBuffer int `yaml:"snapshotBuffer"`
}

// NewConfig создает конфиг по умолчанию.
func NewConfig() Config {
	cfg := Config{
		BoardWidth: 7,
		TotalRows:  8,
		PlayerRows: 4,
		BenchSize:  9,

		MaxStars: 3,
		ItemCap:  3,

		DragThresholdPx: 12,
		SnapRadiusPx:    40,

		TileSizePx:   64,
		BoardOriginX: 0,
		BoardOriginY: 0,
		BenchGapPx:   16,

		SnapshotBuffer: 8,
	}

	// Зона продажи по умолчанию - справа от скамейки.
	cfg.SellZoneX = cfg.BoardOriginX + float64(cfg.BenchSize)*cfg.TileSizePx + 32
	cfg.SellZoneY = cfg.benchY()
	cfg.SellZoneW = cfg.TileSizePx * 2
	cfg.SellZoneH = cfg.TileSizePx
	return cfg
}

// LoadConfig читает YAML-файл поверх значений по умолчанию.
// Отсутствующие в файле поля остаются дефолтными.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет согласованность размеров.
func (c Config) Validate() error {
	if c.BoardWidth <= 0 || c.TotalRows <= 0 || c.BenchSize <= 0 {
		return fmt.Errorf("board dimensions must be positive")
	}
	if c.PlayerRows <= 0 || c.PlayerRows > c.TotalRows {
		return fmt.Errorf("playerRows %d out of range (totalRows %d)", c.PlayerRows, c.TotalRows)
	}
	if c.MaxStars < 1 {
		return fmt.Errorf("maxStars must be at least 1")
	}
	if c.DragThresholdPx <= 0 || c.TileSizePx <= 0 {
		return fmt.Errorf("pixel sizes must be positive")
	}
	return nil
}

func (c Config) benchY() float64 {
	return c.BoardOriginY + float64(c.TotalRows)*c.TileSizePx + c.BenchGapPx
}

// Layout собирает геометрию для systems из конфига.
func (c Config) Layout() systems.BoardLayout {
	return systems.BoardLayout{
		Width:      c.BoardWidth,
		TotalRows:  c.TotalRows,
		PlayerRows: c.PlayerRows,
		BenchSize:  c.BenchSize,

		TileSize: c.TileSizePx,
		OriginX:  c.BoardOriginX,
		OriginY:  c.BoardOriginY,
		BenchY:   c.benchY(),

		SnapRadius: c.SnapRadiusPx,
		SellZone: systems.Rect{
			X: c.SellZoneX, Y: c.SellZoneY,
			W: c.SellZoneW, H: c.SellZoneH,
		},
	}
}
