package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const DefaultReceiptTemplate = "Dear Parent, received {{.Amount}} {{.Currency}} for {{.StudentName}}. Thank you. - {{.Sender}}"

// BillingConfig holds the tunables operators may change without a restart.
type BillingConfig struct {
	DueInDays       int         `mapstructure:"dueInDays"`
	IssuerTag       string      `mapstructure:"issuerTag"`
	Currency        string      `mapstructure:"currency"`
	CountryCode     string      `mapstructure:"countryCode"`
	SchoolSignature string      `mapstructure:"schoolSignature"`
	ReceiptTemplate string      `mapstructure:"receiptTemplate"`
	Relay           RelayConfig `mapstructure:"relay"`
}

// RelayConfig controls notification outbox redelivery.
type RelayConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	BatchSize   int           `mapstructure:"batchSize"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
	BaseBackoff time.Duration `mapstructure:"baseBackoff"`
	MaxBackoff  time.Duration `mapstructure:"maxBackoff"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DueInDays:       10,
		IssuerTag:       "SYSTEM_AUTO",
		Currency:        "PKR",
		CountryCode:     "92",
		SchoolSignature: "SAIREX SCHOOL",
		ReceiptTemplate: DefaultReceiptTemplate,
		Relay: RelayConfig{
			Interval:    30 * time.Second,
			BatchSize:   25,
			MaxAttempts: 5,
			BaseBackoff: 30 * time.Second,
			MaxBackoff:  30 * time.Minute,
		},
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewBillingConfigHolder loads billing.yml from the usual locations and keeps
// it current while the process runs.
func NewBillingConfigHolder(log *zap.Logger) (*BillingConfigHolder, error) {
	v := viper.New()
	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sairex/config")
	v.AddConfigPath("/etc/sairex")
	v.AddConfigPath(".")
	return newHolder(v, log)
}

// NewBillingConfigHolderFromFile loads billing settings from an explicit file.
func NewBillingConfigHolderFromFile(path string, log *zap.Logger) (*BillingConfigHolder, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return newHolder(v, log)
}

// NewStaticBillingConfigHolder returns a holder that never reloads.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func newHolder(v *viper.Viper, log *zap.Logger) (*BillingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("billing-config")

	v.SetEnvPrefix("SAIREX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setBillingDefaults(v)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	cfg, err := decodeBillingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeBillingConfig(v)
			if err != nil {
				log.Warn("invalid billing config ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("billing config reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func setBillingDefaults(v *viper.Viper) {
	d := DefaultBillingConfig()
	v.SetDefault("billing.dueInDays", d.DueInDays)
	v.SetDefault("billing.issuerTag", d.IssuerTag)
	v.SetDefault("billing.currency", d.Currency)
	v.SetDefault("billing.countryCode", d.CountryCode)
	v.SetDefault("billing.schoolSignature", d.SchoolSignature)
	v.SetDefault("billing.receiptTemplate", d.ReceiptTemplate)
	v.SetDefault("billing.relay.interval", d.Relay.Interval)
	v.SetDefault("billing.relay.batchSize", d.Relay.BatchSize)
	v.SetDefault("billing.relay.maxAttempts", d.Relay.MaxAttempts)
	v.SetDefault("billing.relay.baseBackoff", d.Relay.BaseBackoff)
	v.SetDefault("billing.relay.maxBackoff", d.Relay.MaxBackoff)
}

func decodeBillingConfig(v *viper.Viper) (BillingConfig, error) {
	// Unmarshal goes through AllSettings so defaults fill keys the file omits.
	var wrapper struct {
		Billing BillingConfig `mapstructure:"billing"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return BillingConfig{}, err
	}
	if err := ValidateBillingConfig(wrapper.Billing); err != nil {
		return BillingConfig{}, err
	}
	return wrapper.Billing, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func ValidateBillingConfig(cfg BillingConfig) error {
	if cfg.DueInDays < 0 {
		return errors.New("billing.dueInDays cannot be negative")
	}
	if strings.TrimSpace(cfg.IssuerTag) == "" {
		return errors.New("billing.issuerTag cannot be empty")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if strings.TrimSpace(cfg.CountryCode) == "" || strings.Trim(cfg.CountryCode, "0123456789") != "" {
		return errors.New("billing.countryCode must be digits")
	}
	if _, err := template.New("receipt").Parse(cfg.ReceiptTemplate); err != nil {
		return errors.New("billing.receiptTemplate is not a valid template")
	}
	if cfg.Relay.MaxAttempts <= 0 {
		return errors.New("billing.relay.maxAttempts must be positive")
	}
	if cfg.Relay.BatchSize <= 0 {
		return errors.New("billing.relay.batchSize must be positive")
	}
	if cfg.Relay.Interval <= 0 || cfg.Relay.BaseBackoff <= 0 || cfg.Relay.MaxBackoff < cfg.Relay.BaseBackoff {
		return errors.New("billing.relay timings are invalid")
	}
	return nil
}
