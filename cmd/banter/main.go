// banter is a CLI for spoken conversations with an AI persona.
//
// It records from the default microphone, transcribes speech, completes
// a reply with a chat model, and speaks the reply back. Say "goodbye"
// to end the session.
//
// Usage:
//
//	banter run                  # start a conversation session
//	banter run --voice rachel   # pick another voice
//	banter test                 # check every collaborating service
//	banter voices               # list available voices
//
// API keys come from the environment: ELEVENLABS_API_KEY plus
// OPENAI_API_KEY or GEMINI_API_KEY.
package main

import (
	"os"

	"github.com/teslashibe/go-banter/cmd/banter/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
