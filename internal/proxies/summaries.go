package proxies

import (
	"context"
	"strings"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

// summarySettings are shared by every summarization task: low temperature,
// generous output budget.
var summarySettings = models.TaskSettings{
	Temperature: 0.1,
	TopP:        1,
	MaxTokens:   4096,
}

const summarizeRepoSystem = `You are an intelligent repository summarizer assistant. Your task is to
provide a concise summary of the key information and purpose of a given repository based on
its file tree structure and README file contents.

Instructions:

1. Analyze the repository's file tree structure to understand the organization and main
components of the repository.

2. Read and comprehend the content of the repository's README file.

3. Identify the primary purpose, key features, and main functionalities of the repository and
produce a detailed, breakdown report of what each folder contains and each file does.

4. Ensure that your summary is clear, informative, and accurately represents the repository.`

const summarizeRepoUser = `The repository is called '{repo_name}'
The README file contains:
` + "```md" + `
{content}
` + "```" + `
The repository file structure looks like:
` + "```sh" + `
{tree}
` + "```" + `

Produce a highly detailed, breakdown report of the repository, its scope, aim, components, what
each component and each file does.`

const summarizeFileSystem = `You are an intelligent file summarizer assistant. Your task is to provide
an extremely concise summary of the key information in a given file based on the context
provided.

Instructions:
1. Read and understand the context provided.
2. Carefully read the file content to be summarized.
3. Identify the main topics and critical information covered in the file.
4. Provide a compressed summary in 2-3 sentences (maximum 512 characters) that captures the
essence of the file's content in relation to the provided documentation.

Important:
Avoid phrases like "The file <x>" or "The <x> file from the <y> repo". Be direct
and transactional in your summary to save on word count.

Example summaries:

"Specifies patterns for ignoring specific files and directories in version
control, such as compiled files, cache directories, logs, and temporary files, among others"

"SQL file which contains commands to drop the 'scores' table and its schema with fields
like id, axon_uid, hotkey, response_time, score, synapse, valid_response, quickest_response,
checked_with_server, and timestamp"

"Configuration file sets up configurations for mining and validation processes, including
defining paths, network settings, and wallet information through CLI arguments"`

const summarizeFileUser = `The repository is '{repo_name}'.

Description:
{repo_summary}

The file structure:
` + "```sh" + `
{tree}
` + "```" + `

The file you have to summarize is: '{file_path}'
` + "```{language}" + `
{content}
` + "```" + `

Produce a short summary of the file contents, and use as few words as possible.`

const summarizeSnippetSystem = `You are an intelligent code summarizer assistant. Your task is to provide
an extremely concise summary of the key information in a given code fragment based on the
context provided.

Instructions:
1. Read and understand the context provided.
2. Carefully read the code to be summarized.
3. Identify the role of the code in relation to the provided documentation.
4. Provide a concise summary in 2-3 sentences (maximum 512 characters) that captures the
essence of the code.
5. Ensure that your summary is clear, informative, and accurately represents the repository.
6. Do not make any assumptions or pursue "what-if" scenarios.

Important:

Avoid phrases like "The provided code snippet" or "The repository contains." Be
direct and transactional in your summary.

Example code summaries:

"Initialize OpenAI and other custom proxies API credentials"

"Introduction section of the 'vision' repository's README file. Overview of the
repository's purpose related to Bittensor and decentralized subnet inference."`

const summarizeSnippetUser = `The repository is called '{repo_name}'.
Description: {repo_summary}

The file structure looks like:
` + "```sh" + `
{tree}
` + "```" + `

You have the following file '{file_path}' which contains the following:
{file_summary}

Here is a fragment of code from '{file_path}':
` + "```{language}" + `
{context}
` + "```" + `

What does the following code do?
` + "```" + `
{content}
` + "```" + `

Provide a short, condensed summary of what you believe the snippet does.`

// LLMSummarizer renders the summarization and rephrasing prompt templates and
// runs them through a Completer.
type LLMSummarizer struct {
	completer core.Completer
	model     string
}

func NewLLMSummarizer(completer core.Completer, model string) *LLMSummarizer {
	return &LLMSummarizer{completer: completer, model: model}
}

func (s *LLMSummarizer) SummarizeRepo(ctx context.Context, repoName, readme, tree string) (string, error) {
	user := strings.NewReplacer(
		"{repo_name}", repoName,
		"{content}", readme,
		"{tree}", tree,
	).Replace(summarizeRepoUser)

	return s.completer.Complete(ctx, models.LLMTask{
		Name:     "summarize-repo",
		Model:    s.model,
		System:   summarizeRepoSystem,
		User:     user,
		Settings: summarySettings,
	})
}

func (s *LLMSummarizer) SummarizeFile(ctx context.Context, req core.FileSummaryRequest) (string, error) {
	user := strings.NewReplacer(
		"{repo_name}", req.RepoName,
		"{repo_summary}", req.RepoSummary,
		"{tree}", req.Tree,
		"{file_path}", req.FilePath,
		"{language}", req.Language,
		"{content}", req.Content,
	).Replace(summarizeFileUser)

	return s.completer.Complete(ctx, models.LLMTask{
		Name:     "summarize-file",
		Model:    s.model,
		System:   summarizeFileSystem,
		User:     user,
		Settings: summarySettings,
	})
}

func (s *LLMSummarizer) SummarizeSnippet(ctx context.Context, req core.SnippetSummaryRequest) (string, error) {
	user := strings.NewReplacer(
		"{repo_name}", req.RepoName,
		"{repo_summary}", req.RepoSummary,
		"{tree}", req.Tree,
		"{file_path}", req.FilePath,
		"{file_summary}", req.FileSummary,
		"{language}", req.Language,
		"{context}", req.Context,
		"{content}", req.Content,
	).Replace(summarizeSnippetUser)

	return s.completer.Complete(ctx, models.LLMTask{
		Name:     "summarize-snippet",
		Model:    s.model,
		System:   summarizeSnippetSystem,
		User:     user,
		Settings: summarySettings,
	})
}

var _ core.Summarizer = (*LLMSummarizer)(nil)
