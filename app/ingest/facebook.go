package ingest

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

const facebookPrompt = "You are ChatGPT-4. Below is a Facebook post in its original language.\n\n" +
	"Requirements:\n" +
	"1) Begin the response with: \"Latest Facebook post from \\\"%[1]s\\\"\"\n" +
	"2) Create an expanded article in %[2]s with a short title and a summary consisting of 3-5 sentences.\n" +
	"3) The title must include the Facebook page name (e.g., \"%[1]s: [topic]\").\n" +
	"4) Under the header \"Article:\", summarize the main content of the post including key details.\n" +
	"5) Use a formal and informative tone that emphasizes the significance or context of the post.\n" +
	"6) Finally, add a section \"Original Post:\" and include the full original post enclosed in quotes.\n\n" +
	"Format your response exactly as follows:\n\n" +
	"Latest Facebook post from \"%[1]s\"\n\n" +
	"Title: [Your generated title]\n\n" +
	"Article:\n[Your 3-5 sentence summary]\n\n" +
	"Original Post:\n\"%[3]s\""

// FacebookSource scrapes page posts through the posts actor. Pages are
// addressed by URL, so the actor input carries the raw references in
// direct-target mode.
type FacebookSource struct {
	actorID      string
	resultsLimit int
}

func NewFacebookSource(actorID string, resultsLimit int) *FacebookSource {
	return &FacebookSource{
		actorID:      actorID,
		resultsLimit: resultsLimit,
	}
}

func (s *FacebookSource) Name() string {
	return SourceFacebook
}

func (s *FacebookSource) ActorID() string {
	return s.actorID
}

func (s *FacebookSource) Language(prefs UserPrefs) string {
	return cmp.Or(prefs.FacebookLanguage, "en")
}

func (s *FacebookSource) BuildRunInput(refs []string, _ Window) map[string]any {
	startURLs := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		startURLs = append(startURLs, map[string]any{"url": ref})
	}

	return map[string]any{
		"startUrls":    startURLs,
		"resultsLimit": s.resultsLimit,
		"proxy": map[string]any{
			"useApifyProxy":    true,
			"apifyProxyGroups": []string{"RESIDENTIAL"},
		},
	}
}

func (s *FacebookSource) ExpectedType() string {
	return ""
}

func (s *FacebookSource) NativeID(item RawItem) string {
	return cmp.Or(item.AsString("postId"), item.AsString("id"))
}

func (s *FacebookSource) RawTimestamp(item RawItem) string {
	return item.Str("time")
}

func (s *FacebookSource) MapRecord(item RawItem, userID string, postedAt time.Time) Record {
	thumbnail := ""
	if media := item.List("media"); len(media) > 0 {
		thumbnail = media[0].Str("thumbnail")
	}

	return Record{
		UserID:   userID,
		Source:   SourceFacebook,
		NativeID: s.NativeID(item),
		// pageName is a plain string in most actor output but an
		// object with a name field in some revisions.
		AuthorName:      cmp.Or(item.Str("pageName"), item.Str("pageName", "name")),
		Text:            item.Str("text"),
		URL:             item.Str("url"),
		MediaURL:        thumbnail,
		ProfileImageURL: item.Str("user", "profilePic"),
		Likes:           item.Int("likes"),
		Replies:         item.Int("comments"),
		Reposts:         item.Int("shares"),
		PostedAt:        postedAt,
	}
}

func (s *FacebookSource) BuildPrompt(rec Record, prefs UserPrefs) (string, float64) {
	langName := LanguageName(s.Language(prefs))
	pageName := cmp.Or(rec.AuthorName, prefs.Name, prefs.Email)
	return fmt.Sprintf(facebookPrompt, pageName, langName, rec.Text), 0.2
}

func (s *FacebookSource) ParseReply(reply string) (string, string) {
	_, after, found := strings.Cut(reply, "Title:")
	if !found {
		return "Untitled", reply
	}

	titleLine, rest, found := strings.Cut(after, "\n")
	if !found {
		return "Untitled", reply
	}

	summary, _, _ := strings.Cut(rest, "Original Post:")
	summary = strings.TrimSpace(strings.ReplaceAll(summary, "Article:", ""))
	return strings.TrimSpace(titleLine), summary
}
