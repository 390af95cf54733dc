package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deusflow/aidaily/internal/news"
)

const (
	Xiaohongshu = "xiaohongshu"
	Douyin      = "douyin"
	Zhihu       = "zhihu"

	// Primary decides ai_processed.
	Primary = Xiaohongshu
)

// maxPromptRunes bounds each text field embedded in a prompt.
const maxPromptRunes = 1000

// Platform is one target format with its own prompt and token budget.
type Platform struct {
	ID          string
	Label       string
	EmojiPrefix string
	Hashtags    []string
	MaxLength   int // characters asked for in the prompt
	MaxTokens   int

	prompt func(p Platform, title, summary, source string) string
}

// Prompt builds the generation prompt for item.
func (p Platform) Prompt(item news.Item) string {
	title := sanitizeForPrompt(item.Title)
	summary := sanitizeForPrompt(item.Summary)
	if p.prompt == nil {
		return xiaohongshuPrompt(p, title, summary, item.Source)
	}
	return p.prompt(p, title, summary, item.Source)
}

// DefaultPlatforms returns the platforms in processing order, primary first.
func DefaultPlatforms() []Platform {
	return []Platform{
		{
			ID:          Xiaohongshu,
			Label:       "小红书",
			EmojiPrefix: "🤖",
			Hashtags:    []string{"#AI日报", "#科技前沿", "#人工智能", "#黑科技"},
			MaxLength:   600,
			MaxTokens:   600,
			prompt:      xiaohongshuPrompt,
		},
		{
			ID:          Douyin,
			Label:       "抖音",
			EmojiPrefix: "🔥",
			Hashtags:    []string{"#AI", "#科技", "#人工智能", "#知识分享"},
			MaxLength:   200,
			MaxTokens:   400,
			prompt:      douyinPrompt,
		},
		{
			ID:          Zhihu,
			Label:       "知乎",
			EmojiPrefix: "💡",
			MaxLength:   1000,
			MaxTokens:   300,
			prompt:      zhihuPrompt,
		},
	}
}

// PlatformByID finds a platform in list.
func PlatformByID(list []Platform, id string) (Platform, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

func xiaohongshuPrompt(p Platform, title, summary, source string) string {
	return fmt.Sprintf(`请将以下科技新闻转化为小红书风格的文案：

【原文信息】
标题：%s
来源：%s
摘要：%s

【具体要求】
1. 语言风格：活泼、亲切、有网感，使用emoji点缀
2. 结构：
   - 开头用吸引眼球的句子（带%semoji）
   - 分点列出核心亮点（用✅图标）
   - 分享个人看法或启发（用💭emoji）
   - 结尾引导互动（用👇emoji）
3. 内容要点：
   - 突出数据（如有数字要强调）
   - 说明应用场景
   - 分析行业趋势
4. 长度：%d字以内
5. 标签：自动生成3-5个相关话题标签，可参考 %s

请直接输出文案内容，不要加任何解释。`, title, source, summary, p.EmojiPrefix, p.MaxLength, strings.Join(p.Hashtags, " "))
}

func douyinPrompt(p Platform, title, summary, _ string) string {
	return fmt.Sprintf(`请将以下科技新闻转化为抖音短视频脚本：

【原文信息】
标题：%s
摘要：%s

【脚本要求】
1. 时长：15-30秒短视频，口播文字%d字以内
2. 结构：
   - 【开头5秒】悬念式开场，吸引注意力
   - 【10秒核心】核心信息点，快速切换画面
   - 【结尾5秒】提问互动
3. 风格：节奏快、信息密集、有记忆点
4. 包含：画面对应描述、字幕建议、BGM建议
5. 标签：推荐热门话题标签，如 %s

请输出完整脚本。`, title, summary, p.MaxLength, strings.Join(p.Hashtags, " "))
}

func zhihuPrompt(p Platform, title, summary, source string) string {
	return fmt.Sprintf(`请以知乎回答的风格，对以下科技新闻做一段专业点评：

【原文信息】
标题：%s
来源：%s
摘要：%s

【写作要求】
1. 先用一两句话交代事件本身
2. 分析技术要点与行业影响，观点清晰、有理有据
3. 给出对普通读者或从业者的启发
4. 语气理性克制，不使用营销腔，不堆砌emoji
5. 长度：%d字以内

请直接输出点评内容。`, title, source, summary, p.MaxLength)
}

// SimpleSummaryPrompt asks for a one-sentence summary of a title.
func SimpleSummaryPrompt(title string) string {
	return "用一句话总结：" + sanitizeForPrompt(title)
}

// promptUnsafe matches everything outside CJK, ASCII letters/digits,
// whitespace and common punctuation.
var promptUnsafe = regexp.MustCompile(`[^\p{Han}a-zA-Z0-9\s，。！？、：；（）《》【】「」“”‘’"'%.,\-]`)

func sanitizeForPrompt(text string) string {
	if text == "" {
		return ""
	}
	text = promptUnsafe.ReplaceAllString(text, "")
	if r := []rune(text); len(r) > maxPromptRunes {
		text = string(r[:maxPromptRunes])
	}
	return strings.TrimSpace(text)
}
