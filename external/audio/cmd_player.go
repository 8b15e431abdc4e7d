package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/foxseedlab/mensetsukun/internal/audio"
)

// CommandPlayer plays a finished clip by writing it to a temporary file and
// handing that to a configured playback command (ffplay by default).
type CommandPlayer struct {
	command string
}

func NewCommandPlayer(command string) *CommandPlayer {
	return &CommandPlayer{command: command}
}

func (p *CommandPlayer) Play(ctx context.Context, clip audio.Clip) error {
	if len(clip.Data) == 0 {
		return fmt.Errorf("nothing to play")
	}
	f, err := os.CreateTemp("", "mensetsukun-*"+extForMIME(clip.MIME))
	if err != nil {
		return err
	}
	path := f.Name()
	defer func() {
		_ = os.Remove(path)
	}()
	if _, err := f.Write(clip.Data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	argv := buildPlaybackArgv(p.command, path)
	if len(argv) == 0 {
		return fmt.Errorf("playback command is empty")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("playback command not found: %w", err)
		}
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

func buildPlaybackArgv(command, path string) []string {
	argv := strings.Fields(command)
	replaced := false
	for i, arg := range argv {
		if strings.Contains(arg, "{file}") {
			argv[i] = strings.ReplaceAll(arg, "{file}", path)
			replaced = true
		}
	}
	if !replaced && len(argv) > 0 {
		argv = append(argv, path)
	}
	return argv
}

func extForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "ogg"), strings.Contains(mime, "opus"):
		return ".ogg"
	case strings.Contains(mime, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
