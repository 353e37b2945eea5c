package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lisanmuaddib/blog-agent/internal/agentconfig"
	"github.com/lisanmuaddib/blog-agent/internal/prompts"
	"github.com/lisanmuaddib/blog-agent/pkg/actions"
	"github.com/lisanmuaddib/blog-agent/pkg/agent"
	"github.com/lisanmuaddib/blog-agent/pkg/corpus"
	"github.com/lisanmuaddib/blog-agent/pkg/interfaces/tumblr"
	"github.com/lisanmuaddib/blog-agent/pkg/llm"
	"github.com/lisanmuaddib/blog-agent/pkg/llm/ollama"
	"github.com/lisanmuaddib/blog-agent/pkg/llm/openai"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Generate and publish one post",
	Long: `Sample posts from the source blog, generate a new post from them and
publish it to the target blog. The run ends after one post.

Example:
  agent post --source staff --blog my-experiments --skip-asks --skip-tags nsfw,meta`,
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().String("source", "", "blog to sample context posts from")
	postCmd.Flags().String("blog", "", "blog to publish to (defaults to the source)")
	postCmd.Flags().String("provider", ProviderOllama, "model provider: ollama or openai")
	postCmd.Flags().String("model", ollama.ModelAuto, "model name, auto picks a random installed Ollama model")
	postCmd.Flags().Int("context-size", actions.DefaultContextSize, "number of context posts")
	postCmd.Flags().Int("min-size", actions.DefaultMinSize, "context posts must be longer than this many characters")
	postCmd.Flags().String("mood", "", "mood to write in")
	postCmd.Flags().Float64("top-p", actions.DefaultTopP, "nucleus sampling threshold")
	postCmd.Flags().Bool("skip-asks", false, "ignore answered asks")
	postCmd.Flags().StringSlice("skip-tags", nil, "ignore posts with any of these tags (comma-separated)")
	postCmd.Flags().String("prompt-dir", os.Getenv("PROMPT_DIR"), "directory of prompt templates named by model family")
	postCmd.Flags().Bool("dry-run", false, "format the post without publishing it")

	_ = viper.BindPFlag("post.source", postCmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("post.blog", postCmd.Flags().Lookup("blog"))
	_ = viper.BindPFlag("post.provider", postCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("post.model", postCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("post.context_size", postCmd.Flags().Lookup("context-size"))
	_ = viper.BindPFlag("post.min_size", postCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("post.mood", postCmd.Flags().Lookup("mood"))
	_ = viper.BindPFlag("post.top_p", postCmd.Flags().Lookup("top-p"))
	_ = viper.BindPFlag("post.skip_asks", postCmd.Flags().Lookup("skip-asks"))
	_ = viper.BindPFlag("post.skip_tags", postCmd.Flags().Lookup("skip-tags"))
	_ = viper.BindPFlag("post.prompt_dir", postCmd.Flags().Lookup("prompt-dir"))
	_ = viper.BindPFlag("post.dry_run", postCmd.Flags().Lookup("dry-run"))
}

func runPost(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	source := viper.GetString("post.source")
	if source == "" {
		return fmt.Errorf("a source blog is required (--source)")
	}

	tumblrConfig, err := tumblr.NewTumblrConfig()
	if err != nil {
		return fmt.Errorf("failed to create Tumblr config: %w", err)
	}
	// Override logger to use our main logger
	tumblrConfig.Logger = logger

	client, err := tumblr.NewTumblrClient(tumblrConfig)
	if err != nil {
		return fmt.Errorf("failed to create Tumblr client: %w", err)
	}

	model, modelName, err := newLLM(ctx, viper.GetString("post.provider"), viper.GetString("post.model"))
	if err != nil {
		return err
	}

	template, err := prompts.Load(viper.GetString("post.prompt_dir"), ollama.Family(modelName))
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}

	configured, err := agentconfig.ConfigureActions(agentconfig.ActionConfig{
		TumblrClient: client,
		LLM:          model,
		Logger:       logger,
		Post: actions.GeneratePostConfig{
			Source:      source,
			Blog:        viper.GetString("post.blog"),
			Model:       modelName,
			ContextSize: viper.GetInt("post.context_size"),
			Filters:     postFilters(),
			Mood:     viper.GetString("post.mood"),
			TopP:     viper.GetFloat64("post.top_p"),
			DryRun:   viper.GetBool("post.dry_run"),
			Template: template,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure actions: %w", err)
	}

	a := agent.New(agent.Config{Logger: logger})
	for _, action := range configured {
		if err := a.RegisterAction(action); err != nil {
			return fmt.Errorf("failed to register action: %w", err)
		}
	}

	return a.Run(ctx)
}

func postFilters() corpus.Filters {
	return corpus.Filters{
		SkipAsks: viper.GetBool("post.skip_asks"),
		SkipTags: splitList(viper.GetStringSlice("post.skip_tags")),
		MinSize:  viper.GetInt("post.min_size"),
	}
}

// splitList flattens comma separated entries. Values read from the
// environment arrive as a single unsplit string.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// newLLM returns the model client and the resolved model name
func newLLM(ctx context.Context, provider, model string) (llm.LLM, string, error) {
	switch provider {
	case ProviderOllama, "":
		config, err := ollama.NewOllamaConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Ollama config: %w", err)
		}
		config.Logger = logger
		if model != "" && model != ollama.ModelAuto {
			config.Model = model
		}

		client, err := ollama.NewOllamaClient(ctx, config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, client.Model(), nil

	case ProviderOpenAI:
		config, err := openai.NewOpenAIConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to create OpenAI config: %w", err)
		}
		config.Logger = logger
		if model != "" && model != ollama.ModelAuto {
			config.Model = model
		}

		client, err := openai.NewOpenAIClient(config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, client.Model(), nil

	default:
		return nil, "", fmt.Errorf("unknown provider %q", provider)
	}
}
