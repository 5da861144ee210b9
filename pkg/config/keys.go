package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeyType is the value type of a configuration key
type KeyType int

const (
	TypeString KeyType = iota
	TypeBool
	TypeInt
	TypeDuration
	TypeStringList
	TypeLevel
)

func (t KeyType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeStringList:
		return "list"
	case TypeLevel:
		return "level"
	default:
		return "string"
	}
}

// KeySpec describes one user-facing configuration key
type KeySpec struct {
	Name        string
	Type        KeyType
	Default     any
	Description string
}

// KeyError is returned for names that are not `section.key` pairs known to the CLI
type KeyError struct {
	Name string
}

func (e *KeyError) Error() string {
	if !strings.Contains(e.Name, ".") {
		return fmt.Sprintf("'%s' is not a valid configuration name, expected <section>.<key>", e.Name)
	}
	return fmt.Sprintf("'%s' is not a recognized configuration key", e.Name)
}

var keySpecs = []KeySpec{
	{Name: "root.api_url", Type: TypeString, Description: "Base URL of the Livy server"},
	{Name: "root.timeout", Type: TypeDuration, Default: "30s", Description: "HTTP request timeout"},
	{Name: "root.verify_ssl", Type: TypeBool, Default: true, Description: "Verify the server TLS certificate"},
	{Name: "root.retries", Type: TypeInt, Default: 2, Description: "Attempts for failed requests"},
	{Name: "root.timezone", Type: TypeString, Default: "UTC", Description: "Time zone of timestamps in server logs"},
	{Name: "root.telemetry", Type: TypeBool, Description: "Enable error telemetry and crash reporting"},
	{Name: "root.skip_version_check", Type: TypeBool, Default: false, Description: "Disable automatic version update checks"},

	{Name: "logs.format_time", Type: TypeString, Default: "2006-01-02 15:04:05 -0700", Description: "Go time layout of the console timestamp"},
	{Name: "logs.output_file", Type: TypeBool, Default: false, Description: "Write logs into a file by default"},
	{Name: "logs.logfile_level", Type: TypeLevel, Default: "DEBUG", Description: "Minimum level written to the log file"},
	{Name: "logs.with_progressbar", Type: TypeBool, Default: true, Description: "Render Spark task progress as a progress bar"},
	{Name: "logs.highlight_loggers", Type: TypeStringList, Default: []string{}, Description: "Logger names to highlight"},
	{Name: "logs.hide_loggers", Type: TypeStringList, Default: []string{}, Description: "Logger names to hide"},

	{Name: "read_log.keep_watch", Type: TypeBool, Default: true, Description: "Keep watching a batch until it is finished"},
	{Name: "read_log.interval", Type: TypeDuration, Default: "400ms", Description: "Delay between two log polls"},

	{Name: "submit.watch_log", Type: TypeBool, Default: true, Description: "Watch logs after a batch is submitted"},
	{Name: "submit.pre_submit", Type: TypeStringList, Default: []string{}, Description: "Pre-submit hooks to run, in order"},
	{Name: "submit.proxy_user", Type: TypeString, Description: "User to impersonate when running the batch"},
	{Name: "submit.jars", Type: TypeStringList, Description: "Java dependencies added to every batch"},
	{Name: "submit.py_files", Type: TypeStringList, Description: "Python dependencies added to every batch"},
	{Name: "submit.files", Type: TypeStringList, Description: "Files added to every batch"},
	{Name: "submit.archives", Type: TypeStringList, Description: "Archives added to every batch"},
	{Name: "submit.driver_memory", Type: TypeString, Description: "Driver memory, e.g. 4g"},
	{Name: "submit.driver_cores", Type: TypeInt, Description: "Driver cores"},
	{Name: "submit.executor_memory", Type: TypeString, Description: "Memory per executor, e.g. 8g"},
	{Name: "submit.executor_cores", Type: TypeInt, Description: "Cores per executor"},
	{Name: "submit.num_executors", Type: TypeInt, Description: "Number of executors"},
	{Name: "submit.queue", Type: TypeString, Description: "YARN queue"},

	{Name: "plugin.upload_s3.bucket", Type: TypeString, Description: "Bucket the upload_s3 hook writes to"},
	{Name: "plugin.upload_s3.folder_format", Type: TypeString, Default: "{{.ScriptName}}-{{.Time.Format \"20060102\"}}-{{.UUID}}", Description: "Template of the upload folder"},
	{Name: "plugin.upload_s3.expire_days", Type: TypeInt, Default: 0, Description: "Days until uploaded objects expire, 0 to keep them"},
	{Name: "plugin.upload_s3.region", Type: TypeString, Description: "AWS region of the bucket"},
	{Name: "plugin.upload_s3.endpoint", Type: TypeString, Description: "Custom S3 endpoint"},
	{Name: "plugin.upload_s3.access_key_id", Type: TypeString, Description: "Static access key, instead of the AWS credential chain"},
	{Name: "plugin.upload_s3.secret_access_key", Type: TypeString, Description: "Static secret key, instead of the AWS credential chain"},
}

// Keys returns all user-facing keys sorted by name
func Keys() []KeySpec {
	out := make([]KeySpec, len(keySpecs))
	copy(out, keySpecs)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupKey finds a key by its `section.key` name. Names are case-insensitive
// and accept dashes in place of underscores.
func LookupKey(name string) (KeySpec, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, spec := range keySpecs {
		if spec.Name == normalized {
			return spec, true
		}
	}
	return KeySpec{}, false
}

// Parse converts a command-line string into the value stored for the key
func (k KeySpec) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch k.Type {
	case TypeBool:
		switch strings.ToLower(raw) {
		case "1", "t", "true", "y", "yes":
			return true, nil
		case "0", "f", "false", "n", "no":
			return false, nil
		}
	case TypeInt:
		if v, err := strconv.Atoi(raw); err == nil {
			return v, nil
		}
	case TypeDuration:
		if _, err := time.ParseDuration(raw); err == nil {
			return raw, nil
		}
	case TypeStringList:
		if raw == "" {
			return []string{}, nil
		}
		var out []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	case TypeLevel:
		if _, err := ParseLevel(raw); err == nil {
			return strings.ToUpper(raw), nil
		}
	default:
		return raw, nil
	}

	return nil, fmt.Errorf("failed to parse %q as %s for %s", raw, k.Type, k.Name)
}
