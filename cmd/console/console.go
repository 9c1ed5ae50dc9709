package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"companion-bot-be/pkg/dialogue"
	"companion-bot-be/pkg/store"

	"github.com/fatih/color"
)

var (
	botStyle  = color.New(color.FgCyan).SprintFunc()
	boldStyle = color.New(color.FgCyan, color.Bold).SprintFunc()
	userStyle = color.New(color.FgGreen).SprintFunc()
	noteStyle = color.New(color.Faint).SprintFunc()
	warnStyle = color.New(color.FgYellow).SprintFunc()
)

const endedNote = "(conversation ended: type 'restart' for a new chat or 'quit' to leave)"

// Console drives one terminal conversation over In and Out.
type Console struct {
	Controller *dialogue.Controller
	In         io.Reader
	Out        io.Writer
	Think      func()
}

// Run loops until quit, exit or end of input and returns the final session.
func (c *Console) Run() (*store.Session, error) {
	session := c.Controller.NewSession("console", "local")
	c.say(dialogue.OpeningMessage)

	scanner := bufio.NewScanner(c.In)
	for {
		fmt.Fprint(c.Out, userStyle("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(c.Out)
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "quit", "exit":
			return session, nil
		case "":
			continue
		}

		if c.Think != nil {
			c.Think()
		}

		var reply string
		reply, session = c.Controller.Advance(session, input)
		c.say(reply)

		if session.IsEnded() {
			fmt.Fprintln(c.Out, noteStyle(endedNote))
		}
	}

	return session, scanner.Err()
}

func (c *Console) say(reply string) {
	fmt.Fprintln(c.Out, botStyle("Bot: ")+render(reply))
}

// render turns **bold** markers into terminal bold.
func render(text string) string {
	parts := strings.Split(text, "**")
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString(boldStyle(part))
			continue
		}
		if i%2 == 1 {
			// unmatched marker, keep it
			b.WriteString("**")
		}
		b.WriteString(botStyle(part))
	}
	return b.String()
}
