package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/foxseedlab/mensetsukun/internal/audio"
)

// CommandInput captures microphone audio by running a configured command
// that writes raw PCM16LE mono to stdout (arecord by default). Any echo
// cancellation or noise suppression requested in the settings is the
// capture command's responsibility; we only record what was asked for.
type CommandInput struct {
	command string
}

func NewCommandInput(command string) *CommandInput {
	return &CommandInput{command: command}
}

func (c *CommandInput) Open(ctx context.Context, settings audio.InputSettings) (audio.Stream, error) {
	argv := buildCaptureArgv(c.command, settings.SampleRate)
	if len(argv) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = io.Discard
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, mapCaptureStartError(err)
	}
	slog.Debug("capture command started",
		"command", argv[0],
		"sample_rate", settings.SampleRate,
		"echo_cancellation", settings.EchoCancellation,
		"noise_suppression", settings.NoiseSuppression)
	return &commandStream{cmd: cmd, out: stdout}, nil
}

func buildCaptureArgv(command string, sampleRate int) []string {
	argv := strings.Fields(command)
	for i, arg := range argv {
		argv[i] = strings.ReplaceAll(arg, "{rate}", strconv.Itoa(sampleRate))
	}
	return argv
}

func mapCaptureStartError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", audio.ErrNoDevice, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", audio.ErrPermissionDenied, err)
	}
	return err
}

type commandStream struct {
	cmd  *exec.Cmd
	out  io.ReadCloser
	once sync.Once
}

func (s *commandStream) Read(buf []byte) (int, error) {
	return s.out.Read(buf)
}

// Close kills the capture process so the input device is released even when
// the command would otherwise record forever.
func (s *commandStream) Close() error {
	s.once.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
		_ = s.out.Close()
	})
	return nil
}
