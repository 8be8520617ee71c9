package toolset

import "github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"

// refArg mirrors the wire shape of one ref in publishRepoState arguments.
type refArg struct {
	Ref    string `json:"ref"`
	Commit string `json:"commit"`
}

func toRefs(args []refArg) []model.Ref {
	refs := make([]model.Ref, 0, len(args))
	for _, a := range args {
		refs = append(refs, model.Ref{Ref: a.Ref, Commit: a.Commit})
	}
	return refs
}

// bountyArgs mirrors the createBounty arguments.
type bountyArgs struct {
	OwnerPubkey string  `json:"ownerPubkey"`
	RepoID      string  `json:"repoId"`
	IssueID     string  `json:"issueId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (a bountyArgs) toModel() *model.BountyRequest {
	return &model.BountyRequest{
		OwnerPubkey: a.OwnerPubkey,
		RepoID:      a.RepoID,
		IssueID:     a.IssueID,
		Amount:      int64(a.Amount),
		Description: a.Description,
	}
}
