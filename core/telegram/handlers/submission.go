package handlers

import (
	"errors"
	"strconv"
	"strings"
)

// errBadFormat indicates the message does not follow the 3-line submission format.
var errBadFormat = errors.New("bad submission format")

const submissionPrompt = "Please send content in the format:\n" +
	"Step: [number from 1 to 20]\n" +
	"Content: [your content]\n" +
	"Message: [your message]"

// submission is one parsed content upload.
type submission struct {
	Step    int
	Content string
	Message string
}

// isSubmission reports whether the text looks like a content upload.
func isSubmission(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "Step:")
}

// parseSubmission splits the 3-line "Step/Content/Message" format. The step is
// parsed but not range-checked here; bounds belong to the ingestion service.
func parseSubmission(text string) (submission, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		return submission{}, errBadFormat
	}

	stepRaw := strings.TrimSpace(strings.TrimPrefix(lines[0], "Step:"))
	contentRaw := strings.TrimSpace(strings.TrimPrefix(lines[1], "Content:"))
	messageRaw := strings.TrimSpace(strings.TrimPrefix(lines[2], "Message:"))

	if !strings.HasPrefix(lines[0], "Step:") ||
		!strings.HasPrefix(lines[1], "Content:") ||
		!strings.HasPrefix(lines[2], "Message:") {
		return submission{}, errBadFormat
	}

	step, err := strconv.Atoi(stepRaw)
	if err != nil {
		return submission{}, errBadFormat
	}

	return submission{Step: step, Content: contentRaw, Message: messageRaw}, nil
}

// parsePhotoSubmission accepts a 2-line caption variant where the payload is
// the attached photo instead of a Content line.
func parsePhotoSubmission(caption string) (submission, error) {
	lines := strings.Split(strings.TrimSpace(caption), "\n")
	if len(lines) != 2 {
		return submission{}, errBadFormat
	}

	if !strings.HasPrefix(lines[0], "Step:") || !strings.HasPrefix(lines[1], "Message:") {
		return submission{}, errBadFormat
	}

	step, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(lines[0], "Step:")))
	if err != nil {
		return submission{}, errBadFormat
	}

	return submission{
		Step:    step,
		Message: strings.TrimSpace(strings.TrimPrefix(lines[1], "Message:")),
	}, nil
}
