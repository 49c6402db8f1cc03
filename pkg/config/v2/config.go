package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mitchellh/mapstructure"

	"github.com/spf13/viper"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"
)

const (
	DeliverySMTP   = "smtp"
	DeliveryStatic = "static"

	NarrativeOpenAI = "openai"
	NarrativeGemini = "gemini"
	NarrativeStatic = "static"

	NotifySlack  = "slack"
	NotifyStatic = "static"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	Server    Server    `yaml:"server"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	SMTP      SMTP      `yaml:"smtp"`
	Narrative Narrative `yaml:"narrative"`
	Slack     Slack     `yaml:"slack"`
	Session   Session   `yaml:"session"`

	DocumentCreator string `yaml:"document_creator"`
	LogLevel        string `yaml:"log_level"`
	Debug           bool   `yaml:"debug"`
}

// Validate checks the configuration of every enabled pipeline stage, a stage
// that is switched on must have its credentials in place.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Pipeline),
		validation.Field(&c.SMTP,
			validation.When(c.Pipeline.Delivery == DeliverySMTP, validation.By(c.SMTP.validate)).Else(validation.Skip),
		),
		validation.Field(&c.Narrative,
			validation.When(c.Pipeline.Narrative == NarrativeOpenAI || c.Pipeline.Narrative == NarrativeGemini,
				validation.By(c.Narrative.validateProvider(c.Pipeline.Narrative)),
			).Else(validation.Skip),
		),
		validation.Field(&c.Slack,
			validation.When(c.Pipeline.Notify == NotifySlack, validation.By(c.Slack.validate)).Else(validation.Skip),
		),
		validation.Field(&c.Session),
		validation.Field(&c.LogLevel, validation.Required, validation.In("trace", "debug", "info", "warn", "error")),
	)
}

type Server struct {
	Hostname string `yaml:"hostname"`
	Address  string `yaml:"address"`
	Port     string `yaml:"port"`
	// MaxUploadMB limits the size of multipart submissions.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, is.IP),
		validation.Field(&s.Hostname, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, is.Port),
		validation.Field(&s.MaxUploadMB, validation.Min(0)),
	)
}

// Pipeline selects the implementation of each optional submission stage, an
// empty value disables the stage.
type Pipeline struct {
	Delivery  string `yaml:"delivery"`
	Narrative string `yaml:"narrative"`
	Notify    string `yaml:"notify"`
}

func (p Pipeline) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Delivery, validation.In(DeliverySMTP, DeliveryStatic)),
		validation.Field(&p.Narrative, validation.In(NarrativeOpenAI, NarrativeGemini, NarrativeStatic)),
		validation.Field(&p.Notify, validation.In(NotifySlack, NotifyStatic)),
	)
}

type SMTP struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	Sender         string `yaml:"sender"`
	Recipient      string `yaml:"recipient"`
	TLSPolicy      string `yaml:"tls_policy"`
	SSL            bool   `yaml:"ssl"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// validate is only called when smtp delivery is enabled.
func (s SMTP) validate(any) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Host, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.Username, validation.Required),
		validation.Field(&s.Password, validation.Required),
		validation.Field(&s.Sender, validation.Required, is.EmailFormat),
		validation.Field(&s.Recipient, validation.Required, is.EmailFormat),
		validation.Field(&s.TLSPolicy, validation.In("mandatory", "opportunistic", "none")),
		validation.Field(&s.TimeoutSeconds, validation.Min(0)),
	)
}

func (s SMTP) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type Narrative struct {
	OpenAI         LLMProvider `yaml:"openai"`
	Gemini         LLMProvider `yaml:"gemini"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
}

func (n Narrative) validateProvider(provider string) func(any) error {
	return func(any) error {
		switch provider {
		case NarrativeOpenAI:
			return validation.ValidateStruct(&n, validation.Field(&n.OpenAI))
		case NarrativeGemini:
			return validation.ValidateStruct(&n, validation.Field(&n.Gemini))
		default:
			return nil
		}
	}
}

func (n Narrative) Timeout() time.Duration {
	if n.TimeoutSeconds == 0 {
		return 2 * time.Minute
	}

	return time.Duration(n.TimeoutSeconds) * time.Second
}

type LLMProvider struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

func (p LLMProvider) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.APIKey, validation.Required),
		validation.Field(&p.BaseURL, is.URL),
	)
}

type Slack struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
	Username   string `yaml:"username"`
}

func (s Slack) validate(any) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.WebhookURL, validation.Required, is.URL),
	)
}

type Session struct {
	// MaxIdleMinutes is how long an untouched session is kept, zero keeps
	// sessions for the lifetime of the process.
	MaxIdleMinutes       int `yaml:"max_idle_minutes"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

func (s Session) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MaxIdleMinutes, validation.Min(0)),
		validation.Field(&s.SweepIntervalMinutes, validation.When(s.MaxIdleMinutes > 0, validation.Required, validation.Min(1))),
	)
}

func (s Session) MaxIdle() time.Duration {
	return time.Duration(s.MaxIdleMinutes) * time.Minute
}

func (s Session) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	// Extract file name and extension
	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // So that env vars are translated properly
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName // We use yaml tags in the config structs so we can marshal to yaml
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"SMTP_PASSWORD":     "smtp.password",
		"OPENAI_API_KEY":    "narrative.openai.api_key",
		"GEMINI_API_KEY":    "narrative.gemini.api_key",
		"SLACK_WEBHOOK_URL": "slack.webhook_url",
	})
}
