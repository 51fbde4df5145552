package domain

// RuleCategory distinguishes rules about words from rules about behavior.
type RuleCategory string

const (
	RuleCategoryWord     RuleCategory = "word"
	RuleCategoryBehavior RuleCategory = "behavior"
)

func (c RuleCategory) String() string { return string(c) }

func (c RuleCategory) IsValid() bool {
	switch c {
	case RuleCategoryWord, RuleCategoryBehavior:
		return true
	}
	return false
}

// Table names a realtime change source.
type Table string

const (
	TableCouples    Table = "couples"
	TableRules      Table = "rules"
	TableViolations Table = "violations"
	TableRewards    Table = "rewards"
	TableProfiles   Table = "profiles"
)

func (t Table) String() string { return string(t) }

func (t Table) IsValid() bool {
	switch t {
	case TableCouples, TableRules, TableViolations, TableRewards, TableProfiles:
		return true
	}
	return false
}

// ChangeType is the kind of row change carried by a ChangeEvent.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

func (c ChangeType) String() string { return string(c) }

func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}
