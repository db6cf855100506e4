package ingest

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

const twitterPrompt = "You are ChatGPT-4. Below is a tweet in its original language. " +
	"Please translate and adjust it so that it is readable in %[1]s. " +
	"Start by saying: 'In the latest tweet from (%[2]s)...'. " +
	"Then provide a summary in two paragraphs or less, explaining the context or importance of the tweet, " +
	"and finally repeat the original tweet as is. Please do it in %[1]s. " +
	"At the end, on a new line, output the short title in the format: 'Post Title: [Title]'.\n\n" +
	"Original Tweet: %[3]s"

// TwitterSource scrapes tweets through a search actor. Queries are
// built in search-term mode by default; directTargets switches to the
// actor's structured handle/date input instead.
type TwitterSource struct {
	actorID       string
	maxItems      int
	extraQuery    string
	directTargets bool
}

func NewTwitterSource(actorID string, maxItems int, extraQuery string, directTargets bool) *TwitterSource {
	return &TwitterSource{
		actorID:       actorID,
		maxItems:      maxItems,
		extraQuery:    strings.TrimSpace(extraQuery),
		directTargets: directTargets,
	}
}

func (s *TwitterSource) Name() string {
	return SourceTwitter
}

func (s *TwitterSource) ActorID() string {
	return s.actorID
}

func (s *TwitterSource) Language(prefs UserPrefs) string {
	return cmp.Or(prefs.Language, "en")
}

func (s *TwitterSource) BuildRunInput(refs []string, window Window) map[string]any {
	handles := make([]string, 0, len(refs))
	for _, ref := range refs {
		if h := NormalizeHandle(ref); h != "" {
			handles = append(handles, h)
		}
	}

	if s.directTargets {
		return map[string]any{
			"twitterHandles": handles,
			"start":          window.StartDate(),
			"end":            window.UntilDate(),
			"maxItems":       s.maxItems,
		}
	}

	terms := make([]string, 0, len(handles))
	for _, h := range handles {
		q := fmt.Sprintf("from:%s since:%s until:%s", h, window.StartDate(), window.UntilDate())
		if s.extraQuery != "" {
			q += " " + s.extraQuery
		}
		terms = append(terms, q)
	}

	return map[string]any{
		"searchTerms": terms,
		"sort":        "Latest",
		"maxItems":    s.maxItems,
	}
}

func (s *TwitterSource) ExpectedType() string {
	return "tweet"
}

func (s *TwitterSource) NativeID(item RawItem) string {
	return item.AsString("id")
}

// RawTimestamp probes the timestamp locations the actor has used
// across schema revisions, newest first.
func (s *TwitterSource) RawTimestamp(item RawItem) string {
	return item.FirstStr(
		[]string{"createdAt"},
		[]string{"created_at"},
		[]string{"legacy", "created_at"},
		[]string{"tweet", "createdAt"},
		[]string{"tweet", "created_at"},
	)
}

func (s *TwitterSource) MapRecord(item RawItem, userID string, postedAt time.Time) Record {
	name, handle := twitterAuthor(item)

	return Record{
		UserID:          userID,
		Source:          SourceTwitter,
		NativeID:        s.NativeID(item),
		AuthorName:      name,
		AuthorHandle:    handle,
		Text:            strings.TrimSpace(cmp.Or(item.Str("fullText"), item.Str("text"))),
		Lang:            item.Str("lang"),
		URL:             cmp.Or(item.Str("url"), item.Str("twitterUrl")),
		MediaURL:        twitterPhotoURL(item),
		ProfileImageURL: item.Str("author", "profilePicture"),
		Likes:           item.Int("likeCount"),
		Replies:         item.Int("replyCount"),
		Reposts:         item.Int("retweetCount"),
		Quotes:          item.Int("quoteCount"),
		PostedAt:        postedAt,
	}
}

func (s *TwitterSource) BuildPrompt(rec Record, prefs UserPrefs) (string, float64) {
	langName := LanguageName(s.Language(prefs))
	author := cmp.Or(rec.AuthorName, "Unknown")
	return fmt.Sprintf(twitterPrompt, langName, author, rec.Text), 0.3
}

func (s *TwitterSource) ParseReply(reply string) (string, string) {
	before, after, found := strings.Cut(reply, "Post Title:")
	if !found {
		return "Untitled", reply
	}
	return strings.TrimSpace(after), strings.TrimSpace(before)
}

func twitterAuthor(item RawItem) (name, handle string) {
	name = item.Str("author", "name")
	handle = cmp.Or(item.Str("author", "username"), item.Str("author", "userName"))
	if handle == "" {
		handle = item.Str("user", "screen_name")
		name = cmp.Or(name, item.Str("user", "name"))
	}
	return name, handle
}

// twitterPhotoURL prefers the entities media block. A present but
// URL-less media entry there still wins over the extended block.
func twitterPhotoURL(item RawItem) string {
	if url, ok := firstMediaURL(item.Map("entities")); ok {
		return url
	}

	ext := item.Map("extendedEntities")
	if len(ext) == 0 {
		ext = item.Map("extended_entities")
	}
	url, _ := firstMediaURL(ext)
	return url
}

func firstMediaURL(block RawItem) (string, bool) {
	media := block.List("media")
	if len(media) == 0 {
		return "", false
	}
	m := media[0]
	return cmp.Or(m.Str("media_url_https"), m.Str("media_url")), true
}
