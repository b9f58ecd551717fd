package scoring

// divergenceGap is the smallest self/leader difference flagged for discussion.
const divergenceGap = 2

type Divergence struct {
	ItemID string   `json:"itemId"`
	Name   string   `json:"name"`
	Self   Rating   `json:"self"`
	Leader Rating   `json:"leader"`
	Gap    int      `json:"gap"`
	Cat    Category `json:"category"`
}

type ConsensusProposal struct {
	Sections    []CategorySection `json:"sections"`
	Scores      CategoryScores    `json:"scores"`
	Divergences []Divergence      `json:"divergences"`
}

// ProposeConsensus builds a starting point for the consensus step. The
// leader's rating wins when set, otherwise the self rating is carried over.
// Item order and section weights follow the leader's sections; items only
// present in the self sections are appended.
func ProposeConsensus(self, leader []CategorySection) ConsensusProposal {
	selfScores := map[string]Rating{}
	for _, section := range self {
		for _, item := range section.Items {
			selfScores[item.ID] = item.Score
		}
	}

	seen := map[string]bool{}
	var proposal ConsensusProposal
	for _, section := range leader {
		merged := CategorySection{Category: section.Category, Weight: section.Weight}
		for _, item := range section.Items {
			seen[item.ID] = true
			selfScore := selfScores[item.ID]
			out := item
			if !item.Score.Defined() {
				out.Score = selfScore
			}
			if item.Score.Defined() && selfScore.Defined() {
				gap := absInt(int(item.Score) - int(selfScore))
				if gap >= divergenceGap {
					proposal.Divergences = append(proposal.Divergences, Divergence{
						ItemID: item.ID,
						Name:   item.Name,
						Self:   selfScore,
						Leader: item.Score,
						Gap:    gap,
						Cat:    section.Category,
					})
				}
			}
			merged.Items = append(merged.Items, out)
		}
		proposal.Sections = append(proposal.Sections, merged)
	}

	for _, section := range self {
		for _, item := range section.Items {
			if seen[item.ID] {
				continue
			}
			idx := sectionIndex(proposal.Sections, section.Category)
			if idx < 0 {
				proposal.Sections = append(proposal.Sections, CategorySection{Category: section.Category, Weight: section.Weight})
				idx = len(proposal.Sections) - 1
			}
			proposal.Sections[idx].Items = append(proposal.Sections[idx].Items, item)
		}
	}

	proposal.Scores = ComputeCategoryScores(proposal.Sections)
	return proposal
}

func sectionIndex(sections []CategorySection, c Category) int {
	for i, s := range sections {
		if s.Category == c {
			return i
		}
	}
	return -1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
