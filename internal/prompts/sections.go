// Package prompts holds the stage instructions and response specifications
// sent to the generation service, and the section markers each response
// specification asks the model to emit.
package prompts

// Section markers requested by the response specifications.
const (
	SectionIntent      = "INTENT"
	SectionEntities    = "ENTITIES"
	SectionApproach    = "APPROACH"
	SectionSteps       = "STEPS"
	SectionArtifact    = "ARTIFACT"
	SectionNotes       = "NOTES"
	SectionVerdict     = "VERDICT"
	SectionIssues      = "ISSUES"
	SectionSuggestions = "SUGGESTIONS"
	SectionChanges     = "CHANGES"
)

// Verdict values accepted in the VERDICT section.
const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

var sectionNames = map[Stage][]string{
	StageInterpret: {SectionIntent, SectionEntities},
	StagePlan:      {SectionApproach, SectionSteps},
	StageProduce:   {SectionArtifact, SectionNotes},
	StageValidate:  {SectionVerdict, SectionIssues, SectionSuggestions},
	StageRefine:    {SectionArtifact, SectionChanges},
}

// Sections returns the ordered section markers expected in a stage response.
func Sections(stage Stage) ([]string, error) {
	names, ok := sectionNames[stage]
	if !ok {
		return nil, ErrInvalidStage
	}
	return names, nil
}
