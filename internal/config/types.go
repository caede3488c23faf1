package config

import "time"

// Config is the fully merged runapp configuration: built-in defaults overlaid with the
// user-level file and then the project file.
type Config struct {
	Commands Commands `yaml:"commands"`
	Env      EnvNames `yaml:"env"`
	Timing   Timing   `yaml:"timing"`
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
	Build    Build    `yaml:"build"`
}

// Commands holds the argv of every external command runapp invokes.
// Each entry is a program followed by its fixed arguments.
type Commands struct {
	Descriptor    []string `yaml:"descriptor"`     // evaluates register.nix to JSON
	DBInit        []string `yaml:"db_init"`        // creates mysql/data
	DBCredentials []string `yaml:"db_credentials"` // writes the .my.cnf credential files
	DBStart       []string `yaml:"db_start"`
	DBStop        []string `yaml:"db_stop"`
	DBKill        []string `yaml:"db_kill"`
	ServerStop    []string `yaml:"server_stop"`
	ServerStart   []string `yaml:"server_start"` // first element is relative to the server home
	StackDown     []string `yaml:"stack_down"`
	ImageBuild    []string `yaml:"image_build"` // "-t <app>:latest ." is appended
	Build         []string `yaml:"build"`       // the goal and BuildFlags are appended
	BuildFlags    []string `yaml:"build_flags"`
	PortCheck     string   `yaml:"port_check"` // shell snippet, %d is replaced with the server port
}

// EnvNames maps each required environment value to the variable that carries it.
type EnvNames struct {
	Home         string `yaml:"home"`
	ServerHome   string `yaml:"server_home"`
	InfileScript string `yaml:"infile_script"`
	CreateScript string `yaml:"create_script"`
	DropScript   string `yaml:"drop_script"`
}

// Timing bounds every wait runapp performs.
//   - ReadyTimeout: how long a freshly started database may take to show its process and socket lock.
//   - StopTimeout: how long a killed database may take to leave the process table before restarting.
//   - Drain: how long teardown waits for the database to exit before removing its files.
//   - DropSettle: fixed pause after dropping an external schema (there is nothing local to poll).
//   - PollInterval: delay between two probe evaluations.
type Timing struct {
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	StopTimeout  time.Duration `yaml:"stop_timeout"`
	Drain        time.Duration `yaml:"drain"`
	DropSettle   time.Duration `yaml:"drop_settle"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Database configures how the local database process is detected.
type Database struct {
	ProcessName string `yaml:"process_name"`
	Probe       string `yaml:"probe"` // "native" (process table) or "pgrep"
}

// Server configures the application server.
type Server struct {
	Port int `yaml:"port"`
}

// Build configures the Maven build log.
type Build struct {
	Log       string `yaml:"log"` // relative to the project directory
	TailLines int    `yaml:"tail_lines"`
}

// Default returns the built-in configuration matching the nix development shell
// the project ships with.
func Default() Config {
	return Config{
		Commands: Commands{
			Descriptor:    []string{"nix-instantiate", "--eval", "--json", "register.nix"},
			DBInit:        []string{"mysqlinit"},
			DBCredentials: []string{"mysqlcred"},
			DBStart:       []string{"start_mysql"},
			DBStop:        []string{"sh", "-c", "stop_mysql >/dev/null 2>&1"},
			DBKill:        []string{"pkill", "mysqld"},
			ServerStop:    []string{"sh", "-c", "stop_tomcat 2>/dev/null"},
			ServerStart:   []string{"bin/catalina.sh", "jpda", "start"},
			StackDown:     []string{"docker-compose", "down"},
			ImageBuild:    []string{"docker", "build"},
			Build:         []string{"mvn", "clean"},
			BuildFlags:    []string{"-DskipTests"},
			PortCheck:     "lsof -i :%d | grep LISTEN",
		},
		Env: EnvNames{
			Home:         "HOME",
			ServerHome:   "CATALINA_HOME",
			InfileScript: "MYSQL_INFILE",
			CreateScript: "MYSQL_INIT_REMOTE",
			DropScript:   "MYSQL_DROP",
		},
		Timing: Timing{
			ReadyTimeout: 30 * time.Second,
			StopTimeout:  3 * time.Second,
			Drain:        5 * time.Second,
			DropSettle:   1 * time.Second,
			PollInterval: 250 * time.Millisecond,
		},
		Database: Database{
			ProcessName: "mysqld",
			Probe:       "native",
		},
		Server: Server{Port: 8080},
		Build: Build{
			Log:       "tomcat/compile_log.txt",
			TailLines: 50,
		},
	}
}
