package textcat

import (
	"fmt"
	"strings"
)

// PromptCreationPrompt is the few-shot system prompt that turns a dataset
// description into a classification task.
const PromptCreationPrompt = `You are an AI assistant specialized in generating very precise text classification tasks for dataset creation.

Your should write a prompt following a the dataset description. Respond with the prompt and nothing else.

The prompt should follow the same style and structure as the following example prompts, clearly specifying the possible classification labels.

Make sure to always include all of the detailed information from the description and the context of the company that is provided.

Don't include the labels in the classification_task but only provide a high level description of the classification task.

If a label is composed of multiple words, use a hyphen to separate them. For example, 'smartphone-review', 'customer-service', 'product-quality'.:

Description: DavidMovieHouse is a cinema that has been in business for 10 years.
Output: {"classification_task": "The company DavidMovieHouse is a cinema that has been in business for 10 years and has had customers reviews. Classify the customer reviews as", "labels": ["positive", "negative"]}

Description: A dataset that focuses on creating neo-ludite discussions about technologies within the AI space.
Output: {"classification_task": "Neo-ludiite discussions about technologies within the AI space cover. Categorize the discussions into one of the following categories", "labels": ["tech-support", "tech-opposition"]}

Description: A dataset that covers the articles of a niche sports website called TheSportBlogs that focuses on female sports within the ballsport domain for the US market.
Output: {"classification_task": "TechSportBlogs is a niche sports website that focuses on female sports within the ballsport domain for the US market. Determine the category of based on the article using the following categories", "labels": ["basketball", "volleyball", "tennis", "hockey", "baseball", "soccer"]}

Description: A dataset covering customer reviews for an e-commerce website called Argilla that sells technology datasets within the open source Natural Language Processing space and has review with labels "data-quality", "data-accuracy", "customer-service", "price", "product-availability", "shipping-speed"
Output: {"classification_task": "A dataset covering customer reviews for an e-commerce website called Argilla that sells technology datasets within the open source Natural Language Processing space and has review with labels", "labels": ["data-quality", "data-accuracy", "customer-service", "price", "product-availability", "shipping-speed"]}

Description:
`

// DefaultDatasetDescriptions are offered when the user has no description.
var DefaultDatasetDescriptions = []string{
	"A dataset covering customer reviews for an e-commerce website.",
	"A dataset covering news articles about various topics.",
}

const multiLabelHint = "Only apply relevant labels. Applying less labels is better than applying too many labels."

// WithLabelHints appends the candidate labels to a task prompt, plus the
// restraint hint for multi-label datasets.
func WithLabelHints(task string, labels []string, numLabels int) string {
	task = strings.TrimRight(strings.TrimSpace(task), ".")
	var b strings.Builder
	b.WriteString(task)
	if len(labels) > 0 {
		fmt.Fprintf(&b, ". Optional labels: %s.", strings.Join(labels, ", "))
	}
	if numLabels > 1 {
		b.WriteString(" ")
		b.WriteString(multiLabelHint)
	}
	return b.String()
}

const exampleSystemPrompt = "You write realistic, diverse examples for text classification datasets."

// buildExamplePrompt asks for one example at the given difficulty and
// clarity.
func buildExamplePrompt(task string, difficulty Difficulty, clarity Clarity, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You have been assigned a text classification task: %s\n\n", task)
	b.WriteString("Write one text classification example for this task as a JSON object with the keys:\n")
	b.WriteString("  - \"input_text\": the input text specified by the classification task.\n")
	b.WriteString("  - \"label\": the correct label of the input text.\n")
	b.WriteString("  - \"misleading_label\": an incorrect label that is related to the task.\n\n")

	b.WriteString("Guidelines:\n")
	b.WriteString("  - The \"input_text\" should be diverse in expression.\n")
	b.WriteString("  - The \"misleading_label\" must be a valid label for the task, but less appropriate than \"label\" for the \"input_text\".\n")
	fmt.Fprintf(&b, "  - Write all values in %s.\n", language)
	b.WriteString("  - Do not include the values of \"label\" or \"misleading_label\" in the \"input_text\".\n")
	fmt.Fprintf(&b, "  - The \"input_text\" is %s and requires %s level education to comprehend.\n\n", clarity, difficulty)

	b.WriteString("Output the JSON object only, with no explanation. Be creative!")
	return b.String()
}

const labelSystemPrompt = "You are an expert annotator for text classification datasets."

// buildLabelPrompt asks for up to n labels for text from candidates.
func buildLabelPrompt(context string, candidates []string, n int, text string) string {
	var b strings.Builder

	b.WriteString("# Instruction\n")
	b.WriteString("Classify the text by assigning the most appropriate labels.\n")
	b.WriteString("Do not explain your reasoning or add any commentary.\n")
	fmt.Fprintf(&b, "If the text is ambiguous or lacks the information needed to classify it, answer %q.\n", DefaultLabel)
	if n == 1 {
		b.WriteString("Provide the label that best describes the text.\n")
	} else {
		fmt.Fprintf(&b, "Provide a list of at most %d labels that best describe the text.\n", n)
	}

	if context != "" {
		b.WriteString("\n## Context\n")
		b.WriteString(context)
		b.WriteString("\n")
	}

	b.WriteString("\n## Labels\n")
	for _, l := range candidates {
		fmt.Fprintf(&b, "- %s\n", l)
	}

	b.WriteString("\n## Text\n```\n")
	b.WriteString(text)
	b.WriteString("\n```\n\n")

	b.WriteString("## Output Format\n")
	b.WriteString("Answer with this JSON object and nothing else:\n")
	if n == 1 {
		b.WriteString(`{"labels": "label"}`)
	} else {
		b.WriteString(`{"labels": ["label", "label"]}`)
	}
	return b.String()
}
