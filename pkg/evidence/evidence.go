// Package evidence builds the evidence objects an agent embeds in an
// execution's meta field: per-kind summaries that let the correlation
// engine cross-check a claimed action against what was actually observed,
// without persisting the raw sensitive payload itself.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

const contentHashPrefixBytes = 4096

// FileEvidence summarizes a file.read/write/delete action.
type FileEvidence struct {
	Path              string `json:"path"`
	ExistedBefore      bool   `json:"existedBefore"`
	ExistedAfter       bool   `json:"existedAfter"`
	SizeBytes          int64  `json:"sizeBytes"`
	ModeOctal          string `json:"modeOctal"`
	Mtime              string `json:"mtime"`
	Inode              uint64 `json:"inode"`
	ContentHashPrefix  string `json:"contentHashPrefix,omitempty"`
}

// ProcessEvidence summarizes an exec.command/exec.script action.
type ProcessEvidence struct {
	Command       string `json:"command"`
	ExitCode      int    `json:"exitCode"`
	PID           int    `json:"pid"`
	StdoutLen     int    `json:"stdoutLen"`
	StdoutHash    string `json:"stdoutHash,omitempty"`
	StderrPresent bool   `json:"stderrPresent"`
}

// NetworkEvidence summarizes an api.call/web.fetch/web.search/web.browse
// action.
type NetworkEvidence struct {
	URL            string `json:"url"`
	Method         string `json:"method"`
	StatusCode     int    `json:"statusCode"`
	ResponseSize   int64  `json:"responseSize"`
	ResponseHash   string `json:"responseHash,omitempty"`
	DurationMs     int64  `json:"durationMs"`
}

// MessageEvidence summarizes a message.send action. The target itself is
// deliberately not persisted; only its hash is.
type MessageEvidence struct {
	Channel          string `json:"channel"`
	TargetHash       string `json:"targetHash"`
	ContentLength    int    `json:"contentLength"`
	ContentHash      string `json:"contentHash,omitempty"`
	AttachmentsPresent bool `json:"attachmentsPresent"`
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashPrefix returns the SHA-256 hex of data truncated to the first
// contentHashPrefixBytes bytes.
func HashPrefix(data []byte) string {
	if len(data) > contentHashPrefixBytes {
		data = data[:contentHashPrefixBytes]
	}
	return hashHex(data)
}

// BuildFileEvidence inspects the file at path after the action completed,
// using beforeInfo (nil if the file did not exist beforehand) to fill
// existedBefore/existedAfter. content, if non-nil, is hashed for
// contentHashPrefix.
func BuildFileEvidence(path string, beforeInfo os.FileInfo, content []byte) (FileEvidence, error) {
	ev := FileEvidence{Path: path, ExistedBefore: beforeInfo != nil}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ev, nil
		}
		return ev, fmt.Errorf("evidence: stat %q: %w", path, err)
	}

	ev.ExistedAfter = true
	ev.SizeBytes = info.Size()
	ev.ModeOctal = fmt.Sprintf("%04o", info.Mode().Perm())
	ev.Mtime = info.ModTime().UTC().Format("2006-01-02T15:04:05.000Z")
	ev.Inode = inodeOf(info)

	if content != nil {
		ev.ContentHashPrefix = HashPrefix(content)
	}
	return ev, nil
}

// BuildProcessEvidence summarizes a completed process invocation.
func BuildProcessEvidence(command string, exitCode, pid int, stdout []byte, stderrPresent bool) ProcessEvidence {
	ev := ProcessEvidence{
		Command:       command,
		ExitCode:      exitCode,
		PID:           pid,
		StdoutLen:     len(stdout),
		StderrPresent: stderrPresent,
	}
	if len(stdout) > 0 {
		ev.StdoutHash = hashHex(stdout)
	}
	return ev
}

// BuildNetworkEvidence summarizes a completed network request.
func BuildNetworkEvidence(url, method string, statusCode int, responseBody []byte, durationMs int64) NetworkEvidence {
	ev := NetworkEvidence{
		URL: url, Method: method, StatusCode: statusCode,
		ResponseSize: int64(len(responseBody)), DurationMs: durationMs,
	}
	if len(responseBody) > 0 {
		ev.ResponseHash = hashHex(responseBody)
	}
	return ev
}

// BuildMessageEvidence summarizes an outbound message without persisting
// the recipient target itself.
func BuildMessageEvidence(channel, target string, content []byte, attachmentsPresent bool) MessageEvidence {
	ev := MessageEvidence{
		Channel:            channel,
		TargetHash:         hashHex([]byte(target)),
		ContentLength:      len(content),
		AttachmentsPresent: attachmentsPresent,
	}
	if len(content) > 0 {
		ev.ContentHash = hashHex(content)
	}
	return ev
}
