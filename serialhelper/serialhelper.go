// Package serialhelper shares a serial port between processes by holding an
// exclusive flock on the device while it is open.
package serialhelper

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/TheCacophonyProject/go-utils/logging"
	"github.com/tarm/serial"
)

var log = logging.NewLogger("info")

var cmdlineFile = "/boot/firmware/cmdline.txt"

var sleepFn = time.Sleep

type SerialUnavailableError struct {
	msg string
}

func (e *SerialUnavailableError) Error() string {
	return e.msg
}

func NewSerialUnavailableError(msg string) error {
	return &SerialUnavailableError{msg: msg}
}

// SerialInUseFromTerminal reports whether the kernel console is on device.
func SerialInUseFromTerminal(device string) bool {
	b, err := os.ReadFile(cmdlineFile)
	if err != nil {
		log.Debugf("Error when reading %s: %s", cmdlineFile, err)
		return false
	}
	return strings.Contains(string(b), "console="+filepath.Base(device))
}

// Port is a serial port held under an exclusive lock. Close releases both.
type Port struct {
	lockFile *os.File
	port     *serial.Port
}

// Open locks device, retrying while another process holds it, then opens it
// for writing at baud.
func Open(device string, baud int, retries int, wait time.Duration) (*Port, error) {
	if SerialInUseFromTerminal(device) {
		return nil, NewSerialUnavailableError(device + " is in use by the terminal console")
	}

	lockFile, err := lock(device, retries, wait)
	if err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud, ReadTimeout: time.Second})
	if err != nil {
		release(lockFile)
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}
	return &Port{lockFile: lockFile, port: port}, nil
}

func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *Port) Close() error {
	return errors.Join(p.port.Close(), release(p.lockFile))
}

func lock(path string, retries int, wait time.Duration) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}

	for i := retries; ; i-- {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			f.Close()
			return nil, err
		}

		if process, err := getLockingProcess(path); err != nil {
			log.Debugf("Error checking locking process: %v", err)
		} else if process != "" {
			log.Debugf("%s is locked by process: %s", path, process)
		}
		if i <= 0 {
			f.Close()
			return nil, NewSerialUnavailableError("failed to get lock on " + path + ", might be in use by other process")
		}
		log.Infof("%s is locked by another process. Retrying %d more times in %s...", path, i, wait)
		sleepFn(wait)
	}
}

func release(f *os.File) error {
	defer f.Close()
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

func getLockingProcess(path string) (string, error) {
	// `fuser` lists the processes that have the file open.
	cmd := exec.Command("fuser", path)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && exitError.ExitCode() == 1 {
			// Exit code 1 from `fuser` means no process is using the file
			return "", nil
		}
		return "", fmt.Errorf("failed to execute fuser: %v", err)
	}
	return strings.TrimSpace(output.String()), nil
}
