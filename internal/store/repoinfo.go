package store

import (
	"fmt"
	"regexp"
)

// RepoInfo identifies a repository by hosting domain, owner, and name. It is
// derived either from a clone URL or from a store path.
type RepoInfo struct {
	Host  string
	Owner string
	Name  string
}

// FullName returns host/owner/name.
func (r RepoInfo) FullName() string {
	return fmt.Sprintf("%s/%s/%s", r.Host, r.Owner, r.Name)
}

// NameWithOwner returns owner/name.
func (r RepoInfo) NameWithOwner() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// The three accepted clone URL shapes. The https form tolerates a trailing
// slash or .git suffix, the scp-like form an optional .git, and the ssh form
// requires .git with an optional :22 port.
var (
	githubHTTPSURL = regexp.MustCompile(`^https?://(?P<domain>github\.com)/(?P<owner>.*?)/(?P<repo>.*?)(/?|(?:\.git))$`)
	githubGitURL   = regexp.MustCompile(`^git@(?P<domain>github\.com):(?P<owner>.*?)/(?P<repo>.*?)(?:\.git)?$`)
	githubSSHURL   = regexp.MustCompile(`^ssh://git@(?P<domain>github\.com)(?::22)?/(?P<owner>.*?)/(?P<repo>.*?)(?:\.git)$`)
)

// ParseURL extracts a RepoInfo from a clone URL, reporting false for URLs that
// match none of the accepted shapes.
func ParseURL(url string) (RepoInfo, bool) {
	for _, pattern := range []*regexp.Regexp{githubHTTPSURL, githubGitURL, githubSSHURL} {
		if info, ok := parseWithPattern(pattern, url); ok {
			return info, true
		}
	}
	return RepoInfo{}, false
}

func parseWithPattern(pattern *regexp.Regexp, url string) (RepoInfo, bool) {
	match := pattern.FindStringSubmatch(url)
	if match == nil {
		return RepoInfo{}, false
	}

	info := RepoInfo{
		Host:  match[pattern.SubexpIndex("domain")],
		Owner: match[pattern.SubexpIndex("owner")],
		Name:  match[pattern.SubexpIndex("repo")],
	}
	if info.Host == "" || info.Owner == "" || info.Name == "" {
		return RepoInfo{}, false
	}
	return info, true
}
