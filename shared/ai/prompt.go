package ai

import "fmt"

// ContentType selects the instruction template used for a summary.
type ContentType int

const (
	ContentTranscript ContentType = iota
	ContentGeneric
)

func (c ContentType) String() string {
	if c == ContentTranscript {
		return "transcript"
	}
	return "generic"
}

// The section headings are relied on by prompt regression tests.
const transcriptPromptFormat = `Please analyze the following YouTube video transcript and provide a comprehensive summary.

Structure your summary as follows:

1. **Main Topic**: What is the video about? (1-2 sentences)
2. **Key Points**: List the 3-5 most important points discussed
3. **Notable Insights**: Any particularly interesting facts, statistics, or perspectives
4. **Conclusion**: The main takeaway or conclusion of the video

Keep the summary concise but informative. Use bullet points where appropriate.

Transcript:
%s`

const genericPromptFormat = `Please summarize the following content concisely, highlighting the most important information:

%s`

// BuildPrompt renders content into the instruction prompt for its type.
// The content is interpolated verbatim.
func BuildPrompt(content string, contentType ContentType) string {
	if contentType == ContentTranscript {
		return fmt.Sprintf(transcriptPromptFormat, content)
	}
	return fmt.Sprintf(genericPromptFormat, content)
}
