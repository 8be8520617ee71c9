// Package toolset is the static registry of agent-facing tools. Each entry
// carries a JSON schema and a handler; the HTTP and MCP controllers are thin
// shims over the same registry, so the tool surface is identical on both
// transports.
package toolset

import (
	"context"
	"encoding/json"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

// Property describes one parameter in a tool's input schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// InputSchema is the JSON schema of a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Handler executes one tool call with already-decoded arguments.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is one registry entry.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
	Handler     Handler     `json:"-"`
}

// Registry holds the fixed tool surface.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// Tools returns the registry entries in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Execute validates the required arguments of the named tool and runs it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, goerr.New("unknown tool", goerr.T(types.ErrTagNotFound), goerr.V("tool", name))
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, required := range tool.InputSchema.Required {
		if v, ok := args[required]; !ok || v == nil || v == "" {
			return nil, goerr.New("required argument is missing",
				goerr.T(types.ErrTagMissingField),
				goerr.V("tool", name), goerr.V("argument", required))
		}
	}
	return tool.Handler(ctx, args)
}

// ErrorPayload converts any handler error into the uniform error response
// carried by every transport.
func ErrorPayload(err error) map[string]any {
	return map[string]any{
		"success": false,
		"error":   err.Error(),
		"tag":     types.ErrorTag(err),
	}
}

// decode round-trips loosely typed tool arguments into a parameter struct.
// JSON field matching is case-insensitive, which maps camelCase argument
// names onto the exported Go fields.
func decode[T any](args map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(args)
	if err != nil {
		return out, goerr.Wrap(err, "failed to encode tool arguments")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, goerr.Wrap(err, "failed to decode tool arguments",
			goerr.T(types.ErrTagMissingField))
	}
	return out, nil
}

func handler[T any](fn func(ctx context.Context, p T) (any, error)) Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		p, err := decode[T](args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

// schema property shorthands

func str(desc string) Property {
	return Property{Type: "string", Description: desc}
}

func num(desc string) Property {
	return Property{Type: "number", Description: desc}
}

func strList(desc string) Property {
	return Property{Type: "array", Description: desc, Items: &Property{Type: "string"}}
}

func object(props map[string]Property, required ...string) InputSchema {
	return InputSchema{Type: "object", Properties: props, Required: required}
}

// common argument shapes

type repoArgs struct {
	Owner  string
	RepoID string
	Relays []string
	Limit  int
}

type signedRepoArgs struct {
	Owner     string
	RepoID    string
	Relays    []string
	SecretKey string
}

// New builds the registry over the given operations.
func New(uc *usecase.UseCase) *Registry {
	r := &Registry{byName: map[string]Tool{}}

	add := func(name, desc string, schema InputSchema, h Handler) {
		tool := Tool{Name: name, Description: desc, InputSchema: schema, Handler: h}
		r.tools = append(r.tools, tool)
		r.byName[name] = tool
	}

	relaysProp := strList("relay URLs to use instead of the defaults")
	secretProp := str("signing key (hex or nsec); omitted: stored credentials are used")

	add("listRepos", "List repository announcements, optionally scoped to one owner",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"relays": relaysProp,
			"limit":  num("maximum results"),
		}),
		handler(func(ctx context.Context, p usecase.ListReposParams) (any, error) {
			return uc.ListRepos(ctx, p)
		}))

	add("getRepo", "Fetch one repository announcement by owner and repo id",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p repoArgs) (any, error) {
			return uc.GetRepo(ctx, p.Relays, p.Owner, p.RepoID)
		}))

	add("searchRepos", "Full-text search over repository announcements",
		object(map[string]Property{
			"query":  str("search text"),
			"relays": relaysProp,
			"limit":  num("maximum results"),
		}, "query"),
		handler(func(ctx context.Context, p struct {
			Query  string
			Relays []string
			Limit  int
		}) (any, error) {
			return uc.SearchRepos(ctx, p.Relays, p.Query, p.Limit)
		}))

	add("myRepos", "List the repositories announced by the stored identity",
		object(map[string]Property{
			"relays":    relaysProp,
			"secretKey": secretProp,
		}),
		handler(func(ctx context.Context, p struct {
			Relays    []string
			SecretKey string
		}) (any, error) {
			return uc.MyRepos(ctx, p.Relays, p.SecretKey)
		}))

	add("createRepo", "Create a repository: push initial files to the bridge, then announce it",
		object(map[string]Property{
			"repoId":      str("repository identifier"),
			"name":        str("display name, defaults to repoId"),
			"description": str("short description"),
			"files":       Property{Type: "array", Description: "initial files ({path, content})", Items: &Property{Type: "object"}},
			"branch":      str("initial branch, defaults to main"),
			"relays":      relaysProp,
			"secretKey":   secretProp,
		}, "repoId"),
		handler(func(ctx context.Context, p usecase.CreateRepoParams) (any, error) {
			return uc.CreateRepo(ctx, p)
		}))

	add("forkRepo", "Announce a fork of an existing repository under your own key",
		object(map[string]Property{
			"sourceOwner": str("source owner pubkey (hex or npub)"),
			"sourceRepo":  str("source repository identifier"),
			"forkId":      str("fork's repo id, defaults to the source id"),
			"relays":      relaysProp,
			"secretKey":   secretProp,
		}, "sourceOwner", "sourceRepo"),
		handler(func(ctx context.Context, p usecase.ForkRepoParams) (any, error) {
			return uc.ForkRepo(ctx, p)
		}))

	add("mirrorRepo", "Announce a repository hosted on an external forge",
		object(map[string]Property{
			"sourceUrl":   str("clone URL of the external repository"),
			"repoId":      str("repo id, derived from the URL when omitted"),
			"description": str("short description"),
			"relays":      relaysProp,
			"secretKey":   secretProp,
		}, "sourceUrl"),
		handler(func(ctx context.Context, p usecase.MirrorRepoParams) (any, error) {
			return uc.MirrorRepo(ctx, p)
		}))

	add("pushFiles", "Push files through the bridge and index the new head on the relays",
		object(map[string]Property{
			"repoId":        str("repository identifier"),
			"branch":        str("target branch, defaults to main"),
			"files":         Property{Type: "array", Description: "files to commit ({path, content})", Items: &Property{Type: "object"}},
			"commitMessage": str("commit message"),
			"relays":        relaysProp,
			"secretKey":     secretProp,
		}, "repoId", "files"),
		handler(func(ctx context.Context, p usecase.PushFilesParams) (any, error) {
			return uc.PushFiles(ctx, p)
		}))

	add("publishRepoAnnouncement", "Publish a repository announcement with explicit clone and relay tags",
		object(map[string]Property{
			"repoId":      str("repository identifier"),
			"name":        str("display name"),
			"description": str("short description"),
			"web":         strList("web URLs"),
			"clone":       strList("git clone URLs"),
			"relays":      relaysProp,
			"maintainers": strList("maintainer pubkeys"),
			"secretKey":   secretProp,
		}, "repoId"),
		handler(func(ctx context.Context, p usecase.AnnounceParams) (any, error) {
			return uc.PublishAnnouncement(ctx, p)
		}))

	add("publishRepoState", "Publish a repository state event carrying explicit refs",
		object(map[string]Property{
			"repoId":    str("repository identifier"),
			"refs":      Property{Type: "array", Description: "refs ({ref, commit})", Items: &Property{Type: "object"}},
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "repoId", "refs"),
		handler(func(ctx context.Context, p struct {
			RepoID    string
			Refs      []refArg
			Relays    []string
			SecretKey string
		}) (any, error) {
			return uc.PublishState(ctx, p.Relays, p.RepoID, toRefs(p.Refs), p.SecretKey)
		}))

	add("listIssues", "List the issues of a repository",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
			"limit":  num("maximum results"),
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p usecase.ListIssuesParams) (any, error) {
			return uc.ListIssues(ctx, p)
		}))

	add("createIssue", "Open an issue on a repository",
		object(map[string]Property{
			"owner":     str("owner pubkey (hex or npub)"),
			"repoId":    str("repository identifier"),
			"subject":   str("issue title"),
			"content":   str("issue body"),
			"labels":    strList("labels"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "owner", "repoId", "subject"),
		handler(func(ctx context.Context, p usecase.CreateIssueParams) (any, error) {
			return uc.CreateIssue(ctx, p)
		}))

	add("listPRs", "List the pull requests of a repository",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
			"limit":  num("maximum results"),
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p usecase.ListPRsParams) (any, error) {
			return uc.ListPRs(ctx, p)
		}))

	add("createPR", "Open a pull request on a repository",
		object(map[string]Property{
			"owner":      str("owner pubkey (hex or npub)"),
			"repoId":     str("repository identifier"),
			"subject":    str("PR title"),
			"content":    str("PR description"),
			"commitId":   str("head commit, defaults to HEAD"),
			"branchName": str("source branch, defaults to main"),
			"cloneUrls":  strList("clone URLs of the source"),
			"labels":     strList("labels"),
			"relays":     relaysProp,
			"secretKey":  secretProp,
		}, "owner", "repoId", "subject"),
		handler(func(ctx context.Context, p usecase.CreatePRParams) (any, error) {
			return uc.CreatePR(ctx, p)
		}))

	add("listBounties", "Scan for issues labeled as bounties",
		object(map[string]Property{
			"relays":    relaysProp,
			"minAmount": num("minimum reward in sats; issues without an amount always pass"),
			"limit":     num("maximum results"),
		}),
		handler(func(ctx context.Context, p usecase.ListBountiesParams) (any, error) {
			return uc.ListBounties(ctx, p)
		}))

	add("submitBounty", "Publish a bounty claim linking a PR to the issue it resolves",
		object(map[string]Property{
			"issueId":   str("bounty issue event id"),
			"prUrl":     str("URL of the pull request carrying the work"),
			"evidence":  str("free-form claim evidence"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "issueId", "prUrl"),
		handler(func(ctx context.Context, p usecase.SubmitBountyClaimParams) (any, error) {
			return uc.SubmitBountyClaim(ctx, p)
		}))

	add("createBounty", "Record a funded bounty on an issue via the bridge",
		object(map[string]Property{
			"ownerPubkey": str("repository owner pubkey"),
			"repoId":      str("repository identifier"),
			"issueId":     str("issue event id"),
			"amount":      num("reward in sats"),
			"description": str("bounty terms"),
		}, "issueId", "amount"),
		func(ctx context.Context, args map[string]any) (any, error) {
			req, err := decode[bountyArgs](args)
			if err != nil {
				return nil, err
			}
			return uc.CreateBounty(ctx, req.toModel())
		})

	add("starRepo", "Star a repository",
		object(map[string]Property{
			"owner":     str("owner pubkey (hex or npub)"),
			"repoId":    str("repository identifier"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p usecase.ReactionParams) (any, error) {
			return uc.StarRepo(ctx, p)
		}))

	add("unstarRepo", "Remove a prior star from a repository",
		object(map[string]Property{
			"owner":     str("owner pubkey (hex or npub)"),
			"repoId":    str("repository identifier"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p usecase.ReactionParams) (any, error) {
			return uc.UnstarRepo(ctx, p)
		}))

	add("listStars", "List the repositories a pubkey currently stars",
		object(map[string]Property{
			"pubkey":    str("pubkey to inspect; omitted: the stored identity"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}),
		handler(func(ctx context.Context, p struct {
			Pubkey    string
			Relays    []string
			SecretKey string
		}) (any, error) {
			return uc.ListStars(ctx, p.Relays, p.Pubkey, p.SecretKey)
		}))

	add("watchRepo", "Watch a repository for activity",
		object(map[string]Property{
			"owner":     str("owner pubkey (hex or npub)"),
			"repoId":    str("repository identifier"),
			"relays":    relaysProp,
			"secretKey": secretProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p usecase.ReactionParams) (any, error) {
			return uc.WatchRepo(ctx, p)
		}))

	add("trendingRepos", "List recently announced repositories, newest first",
		object(map[string]Property{
			"days":   num("window in days, defaults to 7"),
			"limit":  num("maximum results"),
			"relays": relaysProp,
		}),
		handler(func(ctx context.Context, p struct {
			Days   int
			Limit  int
			Relays []string
		}) (any, error) {
			return uc.TrendingRepos(ctx, p.Relays, p.Days, p.Limit)
		}))

	add("repoContributors", "Aggregate PR and issue authors of a repository",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p repoArgs) (any, error) {
			return uc.Contributors(ctx, p.Relays, p.Owner, p.RepoID)
		}))

	add("listBranches", "List the branches recorded in repository state events",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p repoArgs) (any, error) {
			return uc.Branches(ctx, p.Relays, p.Owner, p.RepoID)
		}))

	add("commitHistory", "Derive the commit timeline of one branch from state events",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"branch": str("branch name, defaults to main"),
			"relays": relaysProp,
			"limit":  num("maximum results"),
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p struct {
			Owner  string
			RepoID string
			Branch string
			Relays []string
			Limit  int
		}) (any, error) {
			return uc.CommitHistory(ctx, p.Relays, p.Owner, p.RepoID, p.Branch, p.Limit)
		}))

	add("createRelease", "Publish a release announcement for a repository",
		object(map[string]Property{
			"repoId":       str("repository identifier"),
			"version":      str("release version"),
			"tagName":      str("git tag, defaults to the version"),
			"targetCommit": str("commit the release points at"),
			"releaseNotes": str("release notes"),
			"relays":       relaysProp,
			"secretKey":    secretProp,
		}, "repoId"),
		handler(func(ctx context.Context, p usecase.CreateReleaseParams) (any, error) {
			return uc.CreateRelease(ctx, p)
		}))

	add("listReleases", "List the release announcements of a repository",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"relays": relaysProp,
		}, "owner", "repoId"),
		handler(func(ctx context.Context, p repoArgs) (any, error) {
			return uc.ListReleases(ctx, p.Relays, p.Owner, p.RepoID)
		}))

	add("exploreRepos", "Browse repositories by topic, or list the known topics",
		object(map[string]Property{
			"category": str("topic to browse; omitted: return the topic index"),
			"relays":   relaysProp,
			"limit":    num("maximum results"),
		}),
		handler(func(ctx context.Context, p struct {
			Category string
			Relays   []string
			Limit    int
		}) (any, error) {
			return uc.ExploreRepos(ctx, p.Relays, p.Category, p.Limit)
		}))

	add("getFile", "Fetch a file's content via the bridge or the repo's combined servers",
		object(map[string]Property{
			"owner":  str("owner pubkey (hex or npub)"),
			"repoId": str("repository identifier"),
			"branch": str("branch, defaults to main"),
			"path":   str("file path within the repository"),
			"relays": relaysProp,
		}, "owner", "repoId", "path"),
		handler(func(ctx context.Context, p usecase.GetFileParams) (any, error) {
			return uc.GetFile(ctx, p)
		}))

	add("addCollaborator", "Add a maintainer to a repository announcement",
		object(map[string]Property{
			"repoId":       str("repository identifier"),
			"collaborator": str("pubkey to add (hex or npub)"),
			"relays":       relaysProp,
			"secretKey":    secretProp,
		}, "repoId", "collaborator"),
		handler(func(ctx context.Context, p struct {
			RepoID       string
			Collaborator string
			Relays       []string
			SecretKey    string
		}) (any, error) {
			return uc.AddCollaborator(ctx, p.Relays, p.RepoID, p.Collaborator, p.SecretKey)
		}))

	add("getPublicKey", "Derive the public identity of a secret key or the stored credentials",
		object(map[string]Property{
			"secretKey": secretProp,
		}),
		handler(func(ctx context.Context, p struct{ SecretKey string }) (any, error) {
			return uc.GetPublicKey(ctx, p.SecretKey)
		}))

	add("loadCredentials", "Locate the stored identity and return a masked view of it",
		object(map[string]Property{}),
		func(ctx context.Context, _ map[string]any) (any, error) {
			creds, err := uc.LoadCredentials(ctx)
			if err != nil {
				return nil, err
			}
			return creds.View(), nil
		})

	return r
}
