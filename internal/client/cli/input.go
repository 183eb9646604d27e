package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/railohail/timeline-rail/internal/timex"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// dateAttempts bounds how often GetDate asks again after a bad answer.
const dateAttempts = 3

// readLine returns one line without its line ending. A final line without
// a newline still counts; io.EOF is only returned when nothing was read.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// GetSimpleText shows
//
//	Prompt text
//	> _
//
// and returns the trimmed answer.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := readLine(reader)
	return strings.TrimSpace(line), err
}

// GetPassword reads a password from the terminal without echo. Callers wipe
// the result with common.WipeByteArray.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return pw, err
}

// GetMultiline collects lines until an empty one or EOF.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := readLine(reader)
		if err != nil || line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetDate asks until the answer parses as a date. With optional set, an
// empty answer is accepted and returned as "".
func GetDate(reader *bufio.Reader, prompt string, optional bool, w io.Writer) (string, error) {
	var lastErr error
	for range dateAttempts {
		v, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return "", err
		}
		if v == "" && optional {
			return "", nil
		}
		if _, lastErr = timex.ParseDate(v); lastErr == nil {
			return v, nil
		}
		fmt.Fprintf(w, "%v, expected YYYY-MM-DD or %s\n", lastErr, dateFmt)
	}
	return "", lastErr
}

// GetEdit prompts with the current value. An empty answer keeps it (nil),
// a single "-" clears it.
func GetEdit(reader *bufio.Reader, label, current string, w io.Writer) (*string, error) {
	v, err := GetSimpleText(reader, fmt.Sprintf("%s [%s] (Enter keeps, '-' clears)", label, current), w)
	if err != nil {
		return nil, err
	}
	switch v {
	case "":
		return nil, nil
	case "-":
		v = ""
	}
	return &v, nil
}
