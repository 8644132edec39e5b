package nexus

import (
	"encoding"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigError represents domain-specific configuration errors
type ConfigError struct {
	Code    string
	Message string
	Field   string
	Cause   error
}

func (e ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e ConfigError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeInvalidType   = "CONFIG_INVALID_TYPE"
	ErrCodeFileNotFound  = "CONFIG_FILE_NOT_FOUND"
	ErrCodeValidation    = "CONFIG_VALIDATION_FAILED"
	ErrCodeEnvironment   = "CONFIG_ENV_READ_FAILED"
	ErrCodeSecurityCheck = "CONFIG_SECURITY_CHECK_FAILED"
	ErrCodeSection       = "CONFIG_SECTION_INVALID"
)

// Validator handles struct tag validation of the whole configuration
type Validator interface {
	Validate(cfg interface{}) error
}

// SecurityChecker performs security validation on configuration
type SecurityChecker interface {
	CheckSecurity(cfg interface{}) error
}

// Section is a configuration block that checks its own invariants.
// Every module config implements it.
type Section interface {
	Validate() error
}

// LoaderOptions contains configuration for the loader
type LoaderOptions struct {
	DefaultFileName string
	FileFlag        string
	FileName        string
	OnlyEnvironment bool
	Validator       Validator
	SecurityChecker SecurityChecker
}

// Loader reads configuration from an optional file and the environment
// on top of whatever the target already holds. Callers pre-fill the
// target with defaults.
type Loader struct {
	options LoaderOptions
}

// LoaderOption is a functional option for configuring the loader
type LoaderOption func(*LoaderOptions)

// WithDefaultFileName sets the file read when no flag or name is given
func WithDefaultFileName(fileName string) LoaderOption {
	return func(o *LoaderOptions) {
		o.DefaultFileName = fileName
	}
}

// WithFileFlag sets the command line flag naming the configuration file
func WithFileFlag(flag string) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileFlag = flag
		o.FileName = ""
	}
}

// WithFileName sets a specific configuration file name
func WithFileName(fileName string) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileName = fileName
		o.FileFlag = ""
	}
}

// WithOnlyEnvironment configures loader to only read from environment
func WithOnlyEnvironment() LoaderOption {
	return func(o *LoaderOptions) {
		o.OnlyEnvironment = true
		o.FileFlag = ""
		o.FileName = ""
	}
}

// WithValidator sets a custom validator
func WithValidator(v Validator) LoaderOption {
	return func(o *LoaderOptions) {
		o.Validator = v
	}
}

// WithSecurityChecker sets a custom security checker
func WithSecurityChecker(sc SecurityChecker) LoaderOption {
	return func(o *LoaderOptions) {
		o.SecurityChecker = sc
	}
}

// NewLoader creates a new configuration loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	options := LoaderOptions{
		DefaultFileName: ".env",
		FileFlag:        "config",
		Validator:       &DefaultValidator{},
		SecurityChecker: &DefaultSecurityChecker{},
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Loader{options: options}
}

// Load fills cfg from the configuration file and environment, then runs
// the security check, struct tag validation and each section's Validate.
func (l *Loader) Load(cfg interface{}) error {
	if err := l.validateInputType(cfg); err != nil {
		return err
	}

	if err := l.read(cfg); err != nil {
		return err
	}

	if err := l.options.SecurityChecker.CheckSecurity(cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeSecurityCheck,
			Message: "Security validation failed",
			Cause:   err,
		}
	}

	if err := l.options.Validator.Validate(cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeValidation,
			Message: "Configuration validation failed",
			Cause:   err,
		}
	}

	return validateSections(reflect.ValueOf(cfg).Elem(), "")
}

func (l *Loader) validateInputType(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return &ConfigError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("configuration must be a pointer to struct, got %T", cfg),
		}
	}
	return nil
}

func (l *Loader) read(cfg interface{}) error {
	fileName := ""
	if !l.options.OnlyEnvironment {
		fileName = l.resolveFileName()
	}

	// ReadConfig applies the environment over the file
	if fileName != "" {
		if err := cleanenv.ReadConfig(fileName, cfg); err != nil {
			return &ConfigError{
				Code:    ErrCodeFileNotFound,
				Message: fmt.Sprintf("Failed to read configuration file: %s", fileName),
				Cause:   err,
			}
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeEnvironment,
			Message: "Failed to read environment variables",
			Cause:   err,
		}
	}

	return readTextEnv(reflect.ValueOf(cfg).Elem())
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// readTextEnv decodes env-tagged struct fields that carry their own text
// encoding, such as decimal amounts. cleanenv walks into struct-typed
// fields instead of decoding them.
func readTextEnv(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)
		if !sf.IsExported() || field.Kind() != reflect.Struct {
			continue
		}

		name, tagged := sf.Tag.Lookup("env")
		if !tagged || !reflect.PointerTo(sf.Type).Implements(textUnmarshaler) {
			if err := readTextEnv(field); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return &ConfigError{
				Code:    ErrCodeEnvironment,
				Message: "Failed to decode environment variable",
				Field:   name,
				Cause:   err,
			}
		}
	}
	return nil
}

// validateSections calls Validate on every nested Section, depth first
func validateSections(v reflect.Value, path string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !t.Field(i).IsExported() || field.Kind() != reflect.Struct {
			continue
		}
		name := strings.TrimPrefix(path+"."+t.Field(i).Name, ".")

		if err := validateSections(field, name); err != nil {
			return err
		}
		if section, ok := field.Addr().Interface().(Section); ok {
			if err := section.Validate(); err != nil {
				return &ConfigError{
					Code:    ErrCodeSection,
					Message: "Configuration section is invalid",
					Field:   name,
					Cause:   err,
				}
			}
		}
	}
	return nil
}

func (l *Loader) resolveFileName() string {
	if l.options.FileName != "" {
		return l.options.FileName
	}

	if l.options.FileFlag == "" {
		return l.getDefaultFileIfExists()
	}

	if fileName := l.getFileNameFromFlag(); fileName != "" {
		return fileName
	}
	return l.getDefaultFileIfExists()
}

// getFileNameFromFlag retrieves filename from command line flag
func (l *Loader) getFileNameFromFlag() string {
	f := flag.Lookup(l.options.FileFlag)
	if f != nil {
		return f.Value.String()
	}

	var fileName string
	flag.StringVar(&fileName, l.options.FileFlag, "", "Specify configuration file")
	flag.Parse()
	return fileName
}

// getDefaultFileIfExists returns default filename if it exists
func (l *Loader) getDefaultFileIfExists() string {
	if l.options.DefaultFileName == "" {
		return ""
	}

	if _, err := os.Stat(l.options.DefaultFileName); err == nil {
		return l.options.DefaultFileName
	}

	return ""
}

// DefaultValidator implements basic validation using go-playground/validator
type DefaultValidator struct {
	validator *validator.Validate
}

func (v *DefaultValidator) Validate(cfg interface{}) error {
	if v.validator == nil {
		v.validator = validator.New()
	}
	return v.validator.Struct(cfg)
}

// DefaultSecurityChecker rejects placeholder values in secret fields,
// including those of nested sections.
type DefaultSecurityChecker struct{}

func (sc *DefaultSecurityChecker) CheckSecurity(cfg interface{}) error {
	return sc.check(reflect.ValueOf(cfg).Elem())
}

func (sc *DefaultSecurityChecker) check(val reflect.Value) error {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			if err := sc.check(field); err != nil {
				return err
			}
		case reflect.String:
			if sc.isSensitiveField(fieldType.Name) && sc.isValueExposed(field.String()) {
				return fmt.Errorf("%w: %s", errExposedSecret, fieldType.Name)
			}
		}
	}
	return nil
}

var errExposedSecret = errors.New("sensitive field appears to contain a placeholder credential")

func (sc *DefaultSecurityChecker) isSensitiveField(fieldName string) bool {
	sensitiveFields := []string{"password", "secret", "key", "token", "credential"}
	fieldLower := strings.ToLower(fieldName)

	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldLower, sensitive) {
			return true
		}
	}
	return false
}

func (sc *DefaultSecurityChecker) isValueExposed(value string) bool {
	exposedPatterns := []string{"password", "123456", "changeme", "secret"}
	valueLower := strings.ToLower(value)

	for _, pattern := range exposedPatterns {
		if strings.Contains(valueLower, pattern) {
			return true
		}
	}
	return false
}
