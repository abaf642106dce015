package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"reaperbridge/internal/config"
	"reaperbridge/internal/elevenlabs"
	"reaperbridge/internal/speech"

	"github.com/spf13/cobra"
)

var speechCmd = &cobra.Command{
	Use:   "speech",
	Short: "Speech helpers: transcription in, synthesized audio out",
}

var speechSTTCmd = &cobra.Command{
	Use:   "stt <input.wav> <output.json>",
	Short: "Transcribe a recording to {ok, text, error} JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runSpeechSTT,
}

var speechTTSCmd = &cobra.Command{
	Use:   "tts <input.txt> <output.mp3> [voice_id]",
	Short: "Synthesize spoken audio for a text file",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runSpeechTTS,
}

func init() {
	speechCmd.AddCommand(speechSTTCmd)
	speechCmd.AddCommand(speechTTSCmd)
}

// sttResult is the transcription boundary shape: ok=false carries the reason
// a recording was rejected before any network call.
type sttResult struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func runSpeechSTT(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWith(ExitGenericError, "ERROR: cannot read recording: "+err.Error())
	}

	result := sttResult{}
	if ok, reason := speech.Analyze(data); !ok {
		result.Error = reason
	} else {
		client, err := speechClient()
		if err != nil {
			exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
		}
		text, err := client.Transcribe(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.OK = true
			result.Text = text
		}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], append(out, '\n'), 0o644); err != nil {
		exitWith(ExitGenericError, "ERROR: cannot write result: "+err.Error())
	}
	if !result.OK {
		os.Exit(ExitGenericError)
	}
	return nil
}

func runSpeechTTS(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		exitWith(ExitGenericError, "ERROR: cannot read text: "+err.Error())
	}
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		exitWith(ExitGenericError, "ERROR: text file is empty")
	}

	client, err := speechClient()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	voice := client.VoiceID
	if len(args) == 3 {
		voice = args[2]
	}
	audio, err := client.SynthesizeWithVoice(cmd.Context(), trimmed, voice)
	if err != nil {
		exitWith(ExitGenericError, "ERROR: "+err.Error())
	}
	if err := os.WriteFile(args[1], audio, 0o644); err != nil {
		exitWith(ExitGenericError, "ERROR: cannot write audio: "+err.Error())
	}
	return nil
}

func speechClient() (*elevenlabs.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client := elevenlabs.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.Voice)
	if cfg.ElevenLabs.BaseURL != "" {
		client.BaseURL = cfg.ElevenLabs.BaseURL
	}
	return client, nil
}
