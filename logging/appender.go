// Package logging provides the small zap-backed logger this module's
// components use for construction-time diagnostics and tick warnings. It
// is deliberately narrow: the solver's hot path never logs (see Logger's
// doc comment in logger.go), so this package only needs to support
// logging that brackets a tick, not logging inside one.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the time format used by ConsoleAppender.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output destination for log entries. It is a subset of
// zapcore.Core, letting this package plug zap's structured fields into
// whatever sink a caller wants without depending on zap's full Core
// surface.
type Appender interface {
	// Write submits one structured log entry to the appender.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync flushes any output buffered by Write.
	Sync() error
}

// ConsoleAppender renders log entries as tab-separated human-readable
// lines and writes them to the wrapped io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates an appender that prints to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates an appender that prints to an arbitrary
// writer.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// NewFileAppender creates an Appender that writes to filename with log
// rotation enabled, so a restarted process doesn't overwrite the
// previous run's log. The returned io.Closer closes the underlying file.
func NewFileAppender(filename string) (Appender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename: filename,
		// Don't rotate on size; only on restart (via the explicit
		// Rotate call below).
		MaxSize: 1024 * 1024,
	}
	if err := rotator.Rotate(); err != nil {
		fmt.Fprintln(os.Stderr, "logging: could not rotate log file:", err) //nolint:errcheck
	}
	return NewWriterAppender(rotator), rotator
}

// ZapcoreFieldsToJSON serializes fields into a JSON object, preserving
// field order (unlike a map, whose iteration order is random).
func ZapcoreFieldsToJSON(fields []zapcore.Field) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("panic serializing log fields: %w", perr)
				return
			}
			err = fmt.Errorf("panic serializing log fields: %v", r)
		}
	}()
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders one entry as a tab-separated line.
func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	const lineParts = 5
	toPrint := make([]string, 0, lineParts)
	toPrint = append(toPrint, entry.Time.UTC().Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	toPrint = append(toPrint, entry.LoggerName)
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	toPrint = append(toPrint, entry.Message)

	if len(fields) == 0 {
		_, err := fmt.Fprintln(a.Writer, strings.Join(toPrint, "\t"))
		return err
	}

	fieldsJSON, err := ZapcoreFieldsToJSON(fields)
	if err != nil {
		if errJSON, mErr := json.Marshal(map[string]string{"logging_err": err.Error()}); mErr == nil {
			toPrint = append(toPrint, string(errJSON))
		} else {
			toPrint = append(toPrint, err.Error())
		}
	} else {
		toPrint = append(toPrint, fieldsJSON)
	}
	_, err = fmt.Fprintln(a.Writer, strings.Join(toPrint, "\t"))
	return err
}

// Sync is a no-op; ConsoleAppender writes unbuffered.
func (a ConsoleAppender) Sync() error {
	return nil
}

// callerToString trims caller.File down to "<package>/<file>:<line>".
// caller.Defined must be true.
func callerToString(caller *zapcore.EntryCaller) string {
	cnt := 0
	idx := strings.LastIndexFunc(caller.File, func(rn rune) bool {
		if rn == '/' {
			cnt++
		}
		return cnt == 2
	})
	return fmt.Sprintf("%s:%d", caller.File[idx+1:], caller.Line)
}
