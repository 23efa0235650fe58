package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	cInf  = color.New(color.FgCyan, color.Bold).SprintFunc()
	cWarn = color.New(color.FgYellow, color.Bold).SprintFunc()
	cErr  = color.New(color.FgRed, color.Bold).SprintFunc()
	cSucc = color.New(color.FgGreen, color.Bold).SprintFunc()
	cFatl = color.New(color.BgRed, color.FgWhite, color.Bold).SprintFunc()
	cTime = color.New(color.FgHiBlack).SprintFunc()
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	exit = os.Exit
)

func init() {
	log.SetFlags(0)
}

// SetOutput redirects info/success/warn lines to out and error/fatal lines to errOut.
// Passing nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func timeStamp() string {
	return cTime(time.Now().Format("2006-01-02 15:04"))
}

func write(w *io.Writer, tag, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(*w, "%s %s %s\n", timeStamp(), tag, msg)
}

func LogInfo(format string, v ...interface{}) {
	write(&stdout, cInf("[INFO]"), format, v...)
}

func LogSuccess(format string, v ...interface{}) {
	write(&stdout, cSucc("[OK]"), format, v...)
}

func LogWarn(format string, v ...interface{}) {
	write(&stdout, cWarn("[WARN]"), format, v...)
}

func LogError(format string, v ...interface{}) {
	write(&stderr, cErr("[ERR]"), format, v...)
}

// LogFatal logs and terminates the process with exit code 1.
func LogFatal(format string, v ...interface{}) {
	write(&stderr, cFatl("[FATAL]"), format, v...)
	exit(1)
}

func LogServerStart(name string, port int, baseURL string, moderated bool) {
	mode := "open (submissions appear once sent)"
	if moderated {
		mode = "moderated (submissions appear once accepted)"
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "   %s  %s\n", cSucc("⚡ "+name+" is live"), cTime("waiting for visitors..."))
	fmt.Fprintf(stdout, "   %s  %s\n", cInf("➜ Local: "), fmt.Sprintf("http://localhost:%d", port))
	fmt.Fprintf(stdout, "   %s  %s\n", cInf("➜ Public:"), color.New(color.FgHiBlue, color.Underline).Sprint(baseURL))
	fmt.Fprintf(stdout, "   %s  %s\n", cInf("➜ Mode:  "), mode)
	fmt.Fprintln(stdout)
}
