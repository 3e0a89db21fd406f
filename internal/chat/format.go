package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var fallbackPolicy = bluemonday.StrictPolicy()

// EscapeHTML escapes &, <, > for the chat transport's HTML parse mode.
func EscapeHTML(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

var stripBold = regexp.MustCompile(`\*\*`)
var stripUnderline = regexp.MustCompile(`__`)
var stripStrike = regexp.MustCompile(`~~`)

// fallbackSanitize strips all HTML via bluemonday's strict policy and then
// the markdown markers, guaranteeing safe plain text when the HTML
// conversion below can't produce balanced markup (spec §4.9 "fall back to
// a plain-text sanitized form").
func fallbackSanitize(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}
	body := fallbackPolicy.Sanitize(text)
	body = stripBold.ReplaceAllString(body, "")
	body = stripUnderline.ReplaceAllString(body, "")
	body = stripStrike.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "`", "")
	return body, true
}

// htmlBalanced checks that every <b>/<i>/<s>/<code>/<pre> tag used by
// FormatResponse is paired (no nesting/order check, matching the original).
func htmlBalanced(body string) bool {
	return strings.Count(body, "<b>") == strings.Count(body, "</b>") &&
		strings.Count(body, "<i>") == strings.Count(body, "</i>") &&
		strings.Count(body, "<s>") == strings.Count(body, "</s>") &&
		strings.Count(body, "<code>") == strings.Count(body, "</code>") &&
		strings.Count(body, "<pre>") == strings.Count(body, "</pre>")
}

type smileyMap struct {
	token string
	emoji string
}

// smilies is ordered longest/most-specific first so e.g. ":-)" matches
// before ":)" would otherwise shadow part of it.
var smilies = []smileyMap{
	{":-)", "😊"}, {":-(", "😞"}, {";-)", "😉"}, {":-D", "😃"},
	{":-P", "😛"}, {":-p", "😛"}, {":-O", "😮"}, {":'/", "😢"},
	{"':(", "😢"}, {":*", "😘"}, {"<3", "❤️"}, {":/", "😕"},
	{":)", "😊"}, {":(", "😞"}, {";)", "😉"}, {":D", "😃"},
	{":P", "😛"}, {":p", "😛"}, {":O", "😮"},
}

// replaceSmilies converts text smilies to emoji, guarding ":*" against
// "**"-adjacent bold markers and ":/" against "://" URLs — Go's RE2 has no
// negative lookahead, so these are resolved as index-based substring
// checks instead of the original's (?!\*) / (?!/) regex guards.
func replaceSmilies(text string) string {
	for _, sm := range smilies {
		switch sm.token {
		case ":*":
			text = replaceUnlessFollowedBy(text, ":*", "*", sm.emoji)
		case ":/":
			text = replaceUnlessFollowedBy(text, ":/", "/", sm.emoji)
		default:
			text = strings.ReplaceAll(text, sm.token, sm.emoji)
		}
	}
	return text
}

func replaceUnlessFollowedBy(text, token, guardSuffix, emoji string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], token) {
			rest := text[i+len(token):]
			if strings.HasPrefix(rest, guardSuffix) {
				b.WriteString(token)
				i += len(token)
				continue
			}
			b.WriteString(emoji)
			i += len(token)
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

var (
	fencedCodePattern  = regexp.MustCompile("(?s)```[ \t\n]*(.*?)```")
	inlineCodePattern  = regexp.MustCompile("`([^`\n]+)`")
	linkPattern        = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	headerPattern      = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(\S.*)$`)
	emptyHeaderPattern = regexp.MustCompile(`(?m)^(#{1,6})[ \t]*$`)
	boldStarPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderPattern   = regexp.MustCompile(`__([^_]+)__`)
	italicStarPattern  = regexp.MustCompile(`\*([^*]+)\*`)
	strikePattern      = regexp.MustCompile(`~~([^~]+)~~`)
	strayStarPattern   = regexp.MustCompile(` +\* +`)
	strayUnderPattern  = regexp.MustCompile(` +_ +`)

	escTagB    = regexp.MustCompile(`(?s)&lt;b&gt;(.*?)&lt;/b&gt;`)
	escTagI    = regexp.MustCompile(`(?s)&lt;i&gt;(.*?)&lt;/i&gt;`)
	escTagS    = regexp.MustCompile(`(?s)&lt;s&gt;(.*?)&lt;/s&gt;`)
	escTagCode = regexp.MustCompile(`(?s)&lt;code&gt;(.*?)&lt;/code&gt;`)
	escTagPre  = regexp.MustCompile(`(?s)&lt;pre&gt;(.*?)&lt;/pre&gt;`)
	escTagA    = regexp.MustCompile(`(?s)&lt;a href=&quot;([^&]*)&quot;&gt;(.*?)&lt;/a&gt;`)

	emptyBoldTag   = regexp.MustCompile(`<b>\s*</b>`)
	emptyItalicTag = regexp.MustCompile(`<i>\s*</i>`)
)

const (
	preToken  = "\x00PRE"
	codeToken = "\x00CODE"
	linkToken = "\x00LINK"
	tokenEnd  = "\x00"
)

// FormatResponse converts the child agent's markdown-ish output to the
// chat transport's HTML dialect (bold/italic/strike/code/link, headers as
// bold, smileys as emoji). ok is false when conversion could not produce
// balanced markup and the caller received the plain-text fallback instead
// (spec §4.9 "Output formatting").
func FormatResponse(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}

	var preBlocks, codeBlocks []string
	var linkTexts, linkURLs []string

	body := fencedCodePattern.ReplaceAllStringFunc(text, func(m string) string {
		content := fencedCodePattern.FindStringSubmatch(m)[1]
		preBlocks = append(preBlocks, content)
		return preToken + strconv.Itoa(len(preBlocks)-1) + tokenEnd
	})
	body = inlineCodePattern.ReplaceAllStringFunc(body, func(m string) string {
		content := inlineCodePattern.FindStringSubmatch(m)[1]
		codeBlocks = append(codeBlocks, content)
		return codeToken + strconv.Itoa(len(codeBlocks)-1) + tokenEnd
	})
	body = linkPattern.ReplaceAllStringFunc(body, func(m string) string {
		g := linkPattern.FindStringSubmatch(m)
		linkTexts = append(linkTexts, g[1])
		linkURLs = append(linkURLs, g[2])
		return linkToken + strconv.Itoa(len(linkTexts)-1) + tokenEnd
	})

	body = replaceSmilies(body)

	body = headerPattern.ReplaceAllString(body, "**$2**")
	body = emptyHeaderPattern.ReplaceAllString(body, "")

	body = EscapeHTML(body)

	body = boldStarPattern.ReplaceAllString(body, "<b>$1</b>")
	body = boldUnderPattern.ReplaceAllString(body, "<b>$1</b>")
	body = italicStarPattern.ReplaceAllString(body, "<i>$1</i>")
	body = strikePattern.ReplaceAllString(body, "<s>$1</s>")

	for i, content := range codeBlocks {
		body = strings.ReplaceAll(body, codeToken+strconv.Itoa(i)+tokenEnd, "<code>"+EscapeHTML(content)+"</code>")
	}
	for i, content := range preBlocks {
		body = strings.ReplaceAll(body, preToken+strconv.Itoa(i)+tokenEnd, "<pre>"+EscapeHTML(content)+"</pre>")
	}
	for i := range linkTexts {
		safeURL := EscapeHTML(linkURLs[i])
		safeText := EscapeHTML(linkTexts[i])
		body = strings.ReplaceAll(body, linkToken+strconv.Itoa(i)+tokenEnd, `<a href="`+safeURL+`">`+safeText+"</a>")
	}

	body = stripBold.ReplaceAllString(body, "")
	body = stripUnderline.ReplaceAllString(body, "")
	body = stripStrike.ReplaceAllString(body, "")
	body = strayStarPattern.ReplaceAllString(body, " ")
	body = strayUnderPattern.ReplaceAllString(body, " ")
	body = strings.ReplaceAll(body, "`", "")

	body = escTagB.ReplaceAllString(body, "<b>$1</b>")
	body = escTagI.ReplaceAllString(body, "<i>$1</i>")
	body = escTagS.ReplaceAllString(body, "<s>$1</s>")
	body = escTagCode.ReplaceAllString(body, "<code>$1</code>")
	body = escTagPre.ReplaceAllString(body, "<pre>$1</pre>")
	body = escTagA.ReplaceAllString(body, `<a href="$1">$2</a>`)

	for i := 0; i < 3; i++ {
		body = strings.ReplaceAll(body, "</b><b>", "")
		body = strings.ReplaceAll(body, "<b></b>", "")
		body = emptyBoldTag.ReplaceAllString(body, "")
		body = strings.ReplaceAll(body, "</i><i>", "")
		body = strings.ReplaceAll(body, "<i></i>", "")
		body = emptyItalicTag.ReplaceAllString(body, "")
	}

	if strings.Contains(body, "\x00") || !htmlBalanced(body) {
		return fallbackSanitize(text)
	}
	return body, true
}

// chunkSafeEndTags are closing tags FormatResponse may emit; splitting
// right after one avoids sending an unmatched end tag in the next chunk.
var chunkSafeEndTags = []string{"</b>", "</i>", "</s>", "</code>", "</pre>", "</a>"}

func lastSafeSplitIndex(candidate string, minPos, maxPos int) int {
	segment := candidate[minPos:maxPos]
	best := -1
	if lastNL := strings.LastIndexByte(segment, '\n'); lastNL >= 0 {
		best = minPos + lastNL + 1
	}
	for _, tag := range chunkSafeEndTags {
		if pos := strings.LastIndex(segment, tag); pos >= 0 {
			end := minPos + pos + len(tag)
			if end > best {
				best = end
			}
		}
	}
	return best
}

// ChunkMessage splits text into pieces no longer than maxLength. Each split
// falls after the last newline or closing HTML tag in the second half of
// the window; when neither occurs there, the piece is cut at exactly
// maxLength bytes, which can fall inside a tag. Pieces after the first
// start with "[Continued...]\n" (spec §4.9 "Long messages are chunked").
func ChunkMessage(text string, maxLength int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	rest := text
	minHalf := maxLength / 2

	for rest != "" {
		if len(rest) <= maxLength {
			chunks = append(chunks, rest)
			break
		}
		end := maxLength + 1
		if end > len(rest) {
			end = len(rest)
		}
		candidate := rest[:end]
		splitAt := lastSafeSplitIndex(candidate, minHalf, len(candidate))
		if splitAt > maxLength && candidate[splitAt-1] != '\n' {
			// A closing tag ending one byte past the limit would make this
			// piece maxLength+1 long; look again within the limit.
			splitAt = lastSafeSplitIndex(candidate, minHalf, maxLength)
		}
		if splitAt < minHalf {
			splitAt = maxLength
		}
		chunks = append(chunks, strings.TrimRight(rest[:splitAt], " \t\n"))
		rest = strings.TrimLeft(rest[splitAt:], " \t\n")
		if rest != "" {
			rest = "[Continued...]\n" + rest
		}
	}
	return chunks
}

// ChunkSendArgs returns the text to send and whether HTML parse mode is
// safe for this particular chunk (a chunk boundary can leave a chunk's
// tags unbalanced even when the whole message was balanced).
func ChunkSendArgs(chunk string, useHTML bool) (string, bool) {
	if !useHTML || htmlBalanced(chunk) {
		return chunk, useHTML
	}
	sanitized, _ := fallbackSanitize(chunk)
	return sanitized, false
}
