package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
// Игровые секции (player, pickups, combat, world) читаются симуляцией,
// остальные относятся к обвязке (хранилище, шина событий, статус-сервер).
type Config struct {
	Player    PlayerConfig    `yaml:"player"`
	Pickups   PickupConfig    `yaml:"pickups"`
	Combat    CombatConfig    `yaml:"combat"`
	World     WorldConfig     `yaml:"world"`
	Stage     StageConfig     `yaml:"stage"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PlayerConfig задаёт базовые характеристики игрока и прирост от усилений
type PlayerConfig struct {
	Speed        float64 `yaml:"speed"`
	MaxHealth    float64 `yaml:"max_health"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	HitboxWidth  float64 `yaml:"hitbox_width"`
	HitboxHeight float64 `yaml:"hitbox_height"`
	HitboxOffX   float64 `yaml:"hitbox_offset_x"`
	HitboxOffY   float64 `yaml:"hitbox_offset_y"`

	// Автоатака
	AttackDamage          float64 `yaml:"attack_damage"`
	AttackRange           float64 `yaml:"attack_range"`
	AttackCooldown        float64 `yaml:"attack_cooldown"`
	AttackCooldownStep    float64 `yaml:"attack_cooldown_step"`
	MinAttackCooldown     float64 `yaml:"min_attack_cooldown"`
	DamageVariance        float64 `yaml:"damage_variance"`
	CritChance            float64 `yaml:"crit_chance"`
	CritMultiplier        float64 `yaml:"crit_multiplier"`
	ProjectileSpeed       float64 `yaml:"projectile_speed"`
	ProjectileRadius      float64 `yaml:"projectile_radius"`
	ProjectileRangeFactor float64 `yaml:"projectile_range_factor"`

	// Урон и неуязвимость
	HurtDuration     float64 `yaml:"hurt_duration"`
	HitInvincibility float64 `yaml:"hit_invincibility"`

	// Рывок
	DodgeCharges       int     `yaml:"dodge_charges"`
	DodgeRecharge      float64 `yaml:"dodge_recharge"`
	DodgeInvincibility float64 `yaml:"dodge_invincibility"`
	DodgeDistance      float64 `yaml:"dodge_distance"`
	TrailInterval      float64 `yaml:"trail_interval"`
	TrailFade          float64 `yaml:"trail_fade"`

	// Прогрессия
	XPToFirstLevel      float64 `yaml:"xp_to_first_level"`
	EarlyLevelGrowth    float64 `yaml:"early_level_growth"`
	LateLevelGrowth     float64 `yaml:"late_level_growth"`
	EarlyLevelCap       int     `yaml:"early_level_cap"`
	LevelUpHealFraction float64 `yaml:"level_up_heal_fraction"`
	KillStreakTimeout   float64 `yaml:"kill_streak_timeout"`

	// Прирост за уровень усиления
	SpeedPerLevel   float64 `yaml:"speed_per_level"`
	DamagePerLevel  float64 `yaml:"damage_per_level"`
	MaxHPPerLevel   float64 `yaml:"max_hp_per_level"`
	XPBoostPerLevel float64 `yaml:"xp_boost_per_level"`
}

// PickupConfig описывает подбираемые предметы и таблицу добычи
type PickupConfig struct {
	Size                 float64 `yaml:"size"`
	BaseCollectRadius    float64 `yaml:"base_collect_radius"`
	CollectRadiusPerGrab float64 `yaml:"collect_radius_per_grab"`
	BasePullDistance     float64 `yaml:"base_pull_distance"`
	PullDistancePerGrab  float64 `yaml:"pull_distance_per_grab"`
	BasePullSpeed        float64 `yaml:"base_pull_speed"`
	PullSpeedPerGrab     float64 `yaml:"pull_speed_per_grab"`
	HealthOrbValue       float64 `yaml:"health_orb_value"`
	GoldDropChance       float64 `yaml:"gold_drop_chance"`
	HealthDropChance     float64 `yaml:"health_drop_chance"`
}

// CombatConfig настраивает эффекты при убийстве
type CombatConfig struct {
	LifestealPerLevel       float64 `yaml:"lifesteal_per_level"`
	ChainChance             float64 `yaml:"chain_chance"`
	ChainRadius             float64 `yaml:"chain_radius"`
	ChainDecay              float64 `yaml:"chain_decay"`
	ExplosionChancePerLevel float64 `yaml:"explosion_chance_per_level"`
	ExplosionRadius         float64 `yaml:"explosion_radius"`
	ExplosionDamageFactor   float64 `yaml:"explosion_damage_factor"`
}

// WorldConfig задаёт границы мира и зону появления мобов
type WorldConfig struct {
	Width           float64 `yaml:"width"`  // 0 — без ограничений
	Height          float64 `yaml:"height"` // 0 — без ограничений
	SpawnAreaWidth  float64 `yaml:"spawn_area_width"`
	SpawnAreaHeight float64 `yaml:"spawn_area_height"`
	WaveBreak       float64 `yaml:"wave_break_seconds"`
	TickRate        int     `yaml:"tick_rate"`
}

type StageConfig struct {
	Path         string `yaml:"path"`
	MobStatsPath string `yaml:"mob_stats_path"`
}

// StorageConfig выбирает репозиторий сохранений: file | badger | redis | memory
type StorageConfig struct {
	Backend        string `yaml:"backend"`
	AppName        string `yaml:"app_name"`
	Path           string `yaml:"path"` // пусто — путь по умолчанию для ОС
	BadgerDir      string `yaml:"badger_dir"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`
	Slot           string `yaml:"slot"`
	Compress       bool   `yaml:"compress"`
}

type EventBusConfig struct {
	URL        string `yaml:"url"` // пусто — in-memory шина
	Stream     string `yaml:"stream"`
	Retention  int    `yaml:"retention_hours"`
	BufferSize int    `yaml:"buffer_size"`
}

type ServerConfig struct {
	StatusPort int  `yaml:"status_port"`
	Enabled    bool `yaml:"enabled"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"` // host:port OTLP HTTP; пусто — OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type LoggingConfig struct {
	Level      string            `yaml:"level"`
	Directory  string            `yaml:"directory"`
	Components map[string]string `yaml:"components"` // уровень по компоненту: world: debug
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Player:  DefaultPlayerConfig(),
		Pickups: DefaultPickupConfig(),
		Combat:  DefaultCombatConfig(),
		World: WorldConfig{
			SpawnAreaWidth:  1280,
			SpawnAreaHeight: 720,
			WaveBreak:       2.0,
			TickRate:        60,
		},
		Stage: StageConfig{
			Path:         "assets/stages/stage1.json",
			MobStatsPath: "assets/mobs.json",
		},
		Storage: StorageConfig{
			Backend:        "file",
			AppName:        "HordeSurvivors",
			BadgerDir:      "data/saves",
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "survivors:save:",
			Slot:           "default",
		},
		EventBus: EventBusConfig{
			Stream:     "GAME_EVENTS",
			Retention:  24,
			BufferSize: 1024,
		},
		Server: ServerConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "horde-survivors",
			SampleRatio: 1.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPlayerConfig возвращает характеристики игрока по умолчанию
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		Speed:        200,
		MaxHealth:    100,
		Width:        32,
		Height:       32,
		HitboxWidth:  20,
		HitboxHeight: 24,
		HitboxOffX:   6,
		HitboxOffY:   0,

		AttackDamage:          40,
		AttackRange:           350,
		AttackCooldown:        0.8,
		AttackCooldownStep:    0.05,
		MinAttackCooldown:     0.1,
		DamageVariance:        0.2,
		CritChance:            0.15,
		CritMultiplier:        2.0,
		ProjectileSpeed:       500,
		ProjectileRadius:      6,
		ProjectileRangeFactor: 1.5,

		HurtDuration:     0.25,
		HitInvincibility: 0.5,

		DodgeCharges:       3,
		DodgeRecharge:      2.0,
		DodgeInvincibility: 0.3,
		DodgeDistance:      120,
		TrailInterval:      0.03,
		TrailFade:          0.25,

		XPToFirstLevel:      100,
		EarlyLevelGrowth:    1.5,
		LateLevelGrowth:     1.05,
		EarlyLevelCap:       3,
		LevelUpHealFraction: 0.2,
		KillStreakTimeout:   5.0,

		SpeedPerLevel:   50,
		DamagePerLevel:  10,
		MaxHPPerLevel:   20,
		XPBoostPerLevel: 0.1,
	}
}

// DefaultPickupConfig возвращает параметры подбора по умолчанию
func DefaultPickupConfig() PickupConfig {
	return PickupConfig{
		Size:                 12,
		BaseCollectRadius:    20,
		CollectRadiusPerGrab: 4,
		BasePullDistance:     80,
		PullDistancePerGrab:  40,
		BasePullSpeed:        200,
		PullSpeedPerGrab:     60,
		HealthOrbValue:       20,
		GoldDropChance:       0.5,
		HealthDropChance:     0.1,
	}
}

// DefaultCombatConfig возвращает параметры эффектов при убийстве по умолчанию
func DefaultCombatConfig() CombatConfig {
	return CombatConfig{
		LifestealPerLevel:       0.15,
		ChainChance:             0.5,
		ChainRadius:             150,
		ChainDecay:              0.7,
		ExplosionChancePerLevel: 0.1,
		ExplosionRadius:         100,
		ExplosionDamageFactor:   0.5,
	}
}

// GetStatusPort возвращает порт статус-сервера с поддержкой fallback значений
func (s *ServerConfig) GetStatusPort() int {
	return getPortWithEnvFallback(s.StatusPort, "SURVIVOR_STATUS_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Validate проверяет, что значения имеют смысл
func (c *Config) Validate() error {
	p := c.Player
	if p.MaxHealth <= 0 {
		return errors.New("player.max_health должен быть > 0")
	}
	if p.AttackCooldown <= 0 || p.MinAttackCooldown <= 0 {
		return errors.New("player.attack_cooldown и min_attack_cooldown должны быть > 0")
	}
	if p.CritChance < 0 || p.CritChance > 1 {
		return fmt.Errorf("player.crit_chance вне диапазона [0,1]: %v", p.CritChance)
	}
	if p.DamageVariance < 0 || p.DamageVariance >= 1 {
		return fmt.Errorf("player.damage_variance вне диапазона [0,1): %v", p.DamageVariance)
	}
	if p.DodgeCharges < 0 {
		return errors.New("player.dodge_charges не может быть отрицательным")
	}
	if p.XPToFirstLevel <= 0 {
		return errors.New("player.xp_to_first_level должен быть > 0")
	}
	if c.World.TickRate <= 0 {
		return errors.New("world.tick_rate должен быть > 0")
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sample_ratio вне диапазона [0,1]: %v", r)
	}
	switch c.Storage.Backend {
	case "file", "badger", "redis", "memory":
	default:
		return fmt.Errorf("неизвестный storage.backend: %q", c.Storage.Backend)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG; без файла возвращает дефолты.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
