package logger

import (
	"io"
	"log"
	"os"
	"sync"

	"linear-solver/internal/config"
)

var (
	fileMutex sync.Mutex
	INFO      *log.Logger
	ERROR     *log.Logger
	logFile   *os.File
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

func LogINFO(s string) {
	if INFO == nil {
		return
	}
	INFO.Println(s)
}

func LogERROR(s string) {
	if ERROR == nil {
		return
	}
	ERROR.Println(s)
}

type lockedFile struct {
	file *os.File
}

func (lf *lockedFile) Write(p []byte) (n int, err error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()
	return lf.file.Write(p)
}

// Init направляет INFO в stdout, ERROR в stderr и дублирует обе ленты в файл,
// если путь задан. Без файла логгер пишет только в консоль.
func Init(stdout, stderr io.Writer, path string) {
	if path == "" {
		INFO = log.New(stdout, "INFO: ", flags)
		ERROR = log.New(stderr, "ERROR: ", flags)
		return
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Printf("Failed to open log file: %v. We will use standard output", err)
		INFO = log.New(stdout, "INFO: ", flags)
		ERROR = log.New(stderr, "ERROR: ", flags)
		return
	}
	logFile = file

	writer := &lockedFile{file: file}
	INFO = log.New(io.MultiWriter(stdout, writer), "INFO: ", flags)
	ERROR = log.New(io.MultiWriter(stderr, writer), "ERROR: ", flags)
}

func InitAgentLogger() {
	Init(os.Stdout, os.Stderr, config.AppConfig.AgentLogFilePath)
}

func InitServerLogger() {
	Init(os.Stdout, os.Stderr, config.AppConfig.ServerLogFilePath)
}

// Discard глушит оба логгера, используется в тестах
func Discard() {
	INFO = log.New(io.Discard, "INFO: ", flags)
	ERROR = log.New(io.Discard, "ERROR: ", flags)
}

func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
