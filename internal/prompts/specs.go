package prompts

const interpretSpec = `Respond using exactly these labeled sections, in this order:

INTENT: <one or two sentences stating what must be built>
ENTITIES: <comma-separated list of the key entities>

Field constraints:
- INTENT: A concise restatement of the task's goal in your own words.
  Mention the target format when it matters to the goal.
- ENTITIES: The data types, functions, inputs, outputs, and external
  systems the solution involves. Use short noun phrases.

Behavioral constraints:
- Start each section on its own line with the label followed by a colon
- Do not include any text before INTENT:
- Do not write code`

const planSpec = `Respond using exactly these labeled sections, in this order:

APPROACH: <a short paragraph describing the overall strategy>
STEPS:
- <first implementation step>
- <second implementation step>

Field constraints:
- APPROACH: The strategy, the main components, and how they fit
  together. Reference entities from the task context by name.
- STEPS: An ordered bulleted list of concrete implementation steps,
  one per line. Keep each step to a single sentence.

Behavioral constraints:
- Start each section on its own line with the label followed by a colon
- Do not write the implementation itself`

const produceSpec = `Respond using exactly these labeled sections, in this order:

ARTIFACT:
<the complete artifact in the target format>
NOTES: <brief notes on assumptions or limitations>

Field constraints:
- ARTIFACT: The full artifact. A single markdown code fence around it
  is permitted; nothing else may appear in this section.
- NOTES: One to three sentences. Write "none" when there is nothing to add.

Behavioral constraints:
- Start each section on its own line with the label followed by a colon
- NOTES must come after the complete artifact
- Never elide code with ellipses or placeholders`

const validateSpec = `Respond using exactly these labeled sections, in this order:

VERDICT: <PASS or FAIL>
ISSUES:
- <first concrete issue>
SUGGESTIONS:
- <optional improvement>

Field constraints:
- VERDICT: PASS when the artifact fulfils the task without concrete
  defects, FAIL otherwise. Exactly one word.
- ISSUES: One bulleted line per concrete defect that must be fixed.
  Write "none" when the verdict is PASS.
- SUGGESTIONS: Optional non-blocking improvements, one per line.
  Write "none" when there are no suggestions.

Behavioral constraints:
- Start each section on its own line with the label followed by a colon
- Do not rewrite the artifact`

const refineSpec = `Respond using exactly these labeled sections, in this order:

ARTIFACT:
<the complete corrected artifact in the target format>
CHANGES: <brief summary of what was corrected>

Field constraints:
- ARTIFACT: The full corrected artifact. A single markdown code fence
  around it is permitted; nothing else may appear in this section.
- CHANGES: One line per validation error addressed.

Behavioral constraints:
- Start each section on its own line with the label followed by a colon
- Return the entire artifact, never a partial diff`

var specs = map[Stage]string{
	StageInterpret: interpretSpec,
	StagePlan:      planSpec,
	StageProduce:   produceSpec,
	StageValidate:  validateSpec,
	StageRefine:    refineSpec,
}

// Spec returns the response specification for a workflow stage.
// Specifications define the labeled sections the stage parses and the
// behavioral constraints on the response.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
