package version

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает сборку сервиса; поля version/commit/date заполняются
// через -ldflags при сборке релиза.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get возвращает сведения о текущей сборке.
func Get() Build {
	return Build{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
}

// GetVersion возвращает только номер версии.
func GetVersion() string { return version }

// UserAgent — идентификатор сервиса для внешних систем (Kafka ClientID).
func UserAgent() string { return "bookstore/" + version }

func String() string {
	b := Get()
	return fmt.Sprintf("version=%s commit=%s date=%s go=%s", b.Version, b.Commit, b.Date, b.GoVersion)
}
