package config

// Config is the root build file (jbuild.yaml).
type Config struct {
	Library   LibraryConfig   `yaml:"library"`
	Include   []string        `yaml:"include"`
	Build     BuildConfig     `yaml:"build"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Docs      DocsConfig      `yaml:"docs"`
	Publish   PublishConfig   `yaml:"publish"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Events    EventsConfig    `yaml:"events,omitempty"`
	Daemon    DaemonConfig    `yaml:"daemon,omitempty"`

	// RootDir is the directory containing the build file; relative paths resolve against it.
	RootDir string `yaml:"-"`
}

// LibraryConfig is the identity of the library shared by every subproject.
type LibraryConfig struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Group          string  `yaml:"group"`
	Version        string  `yaml:"version"`
	URL            string  `yaml:"url,omitempty"`
	Author         string  `yaml:"author,omitempty"`
	Email          string  `yaml:"email,omitempty"`
	Vendor         string  `yaml:"vendor,omitempty"`
	CopyrightSince int     `yaml:"copyright_since,omitempty"`
	License        License `yaml:"license,omitempty"`
	SCM            SCM     `yaml:"scm,omitempty"`
}

// License is the POM licence block.
type License struct {
	Name string `yaml:"name,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

// SCM is the POM source control block.
type SCM struct {
	URL                 string `yaml:"url,omitempty"`
	Connection          string `yaml:"connection,omitempty"`
	DeveloperConnection string `yaml:"developer_connection,omitempty"`
}

// BuildConfig controls task execution.
type BuildConfig struct {
	OutputDir   string `yaml:"output_dir,omitempty"`
	Parallelism int    `yaml:"parallelism,omitempty"`
	JavaRelease int    `yaml:"java_release,omitempty"`
}

// ToolchainConfig names the external JDK tools. Test and coverage commands are
// shell-like templates; see jdk.Expand for the supported placeholders.
type ToolchainConfig struct {
	Javac           string `yaml:"javac,omitempty"`
	Javadoc         string `yaml:"javadoc,omitempty"`
	Java            string `yaml:"java,omitempty"`
	TestCommand     string `yaml:"test_command,omitempty"`
	CoverageCommand string `yaml:"coverage_command,omitempty"`
}

// DocsConfig holds build-wide API documentation options. Projects may override visibility.
type DocsConfig struct {
	Visibility string       `yaml:"visibility,omitempty"`
	Encoding   string       `yaml:"encoding,omitempty"`
	Exclude    []string     `yaml:"exclude,omitempty"`
	Links      []LinkConfig `yaml:"links,omitempty"`
	Tags       []TagConfig  `yaml:"tags,omitempty"`
	Stylesheet string       `yaml:"stylesheet,omitempty"`
	Colorize   *bool        `yaml:"colorize,omitempty"`
	SourceHTML *bool        `yaml:"source_html,omitempty"`
}

// LinkConfig is an offline external link target.
type LinkConfig struct {
	URL         string `yaml:"url"`
	PackageList string `yaml:"package_list"`
}

// TagConfig is a custom javadoc tag definition.
type TagConfig struct {
	Name      string `yaml:"name"`
	Locations string `yaml:"locations,omitempty"`
	Label     string `yaml:"label"`
}

// PublishConfig selects and authenticates against the artifact repository.
type PublishConfig struct {
	SnapshotURL          string      `yaml:"snapshot_url,omitempty"`
	ReleaseURL           string      `yaml:"release_url,omitempty"`
	UsernameEnv          string      `yaml:"username_env,omitempty"`
	PasswordEnv          string      `yaml:"password_env,omitempty"`
	SigningKeyEnv        string      `yaml:"signing_key_env,omitempty"`
	SigningKeyFile       string      `yaml:"signing_key_file,omitempty"`
	SigningPassphraseEnv string      `yaml:"signing_passphrase_env,omitempty"`
	StagingDir           string      `yaml:"staging_dir,omitempty"`
	Retry                RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures upload retries.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    string           `yaml:"initial,omitempty"`
	Max        string           `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig enables the SQLite run history.
type HistoryConfig struct {
	Database string `yaml:"database,omitempty"`
}

// EventsConfig enables NATS outcome notifications.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// DaemonConfig schedules periodic builds.
type DaemonConfig struct {
	Interval string `yaml:"interval,omitempty"`
	Cron     string `yaml:"cron,omitempty"`
	Publish  bool   `yaml:"publish,omitempty"`
}

// Enabled reports whether an optional boolean is unset or true.
func Enabled(b *bool) bool { return b == nil || *b }
