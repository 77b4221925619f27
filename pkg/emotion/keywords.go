package emotion

// ==========================================
// KEYWORD HEURISTIC VOCABULARY
// ==========================================
// All entries are matched against lowercased, width-folded text.

type polarity int

const (
	positive polarity = 1
	negative polarity = -1
)

type phrase struct {
	text     string
	weight   float64
	polarity polarity
}

// neutralQuestions are plain questions that must never be scored as emotional.
var neutralQuestions = []string{
	"你喜欢什么", "你喜欢做什么", "你平时喜欢", "你在干什么", "你在干嘛", "你在做什么",
	"你是谁", "你叫什么", "你几岁", "你多大", "你在哪",
	"what do you like", "what are you doing", "who are you", "what's your name",
	"what is your name", "how old are you", "where are you", "what do you do",
}

// strongPhrases bypass question and negation dampening.
var strongPhrases = []phrase{
	{"我爱你", 4, positive},
	{"爱死你了", 4, positive},
	{"好爱你", 4, positive},
	{"最爱你", 4, positive},
	{"想死你了", 4, positive},
	{"好想你", 3, positive},
	{"喜欢你", 3, positive},
	{"离不开你", 3, positive},
	{"i love you", 4, positive},
	{"love you so much", 4, positive},
	{"i miss you so much", 3, positive},
	{"you make me so happy", 3, positive},
	{"i'm so happy", 3, positive},
	{"im so happy", 3, positive},

	{"我恨你", 4, negative},
	{"我好难过", 3, negative},
	{"我好伤心", 3, negative},
	{"我想哭", 3, negative},
	{"我好累", 3, negative},
	{"受不了了", 3, negative},
	{"i hate you", 4, negative},
	{"i'm so sad", 3, negative},
	{"im so sad", 3, negative},
	{"i'm heartbroken", 4, negative},
	{"i want to cry", 3, negative},
}

const (
	highIntensity  = 2.0
	mildIntensity  = 1.0
	slangIntensity = 1.5
)

var positiveHigh = []string{
	"爱死了", "超爱", "最爱", "深爱", "疯狂喜欢", "太棒了", "完美", "无敌", "超级棒",
	"absolutely love", "adore", "amazing", "perfect", "wonderful",
}

var positiveMild = []string{
	"爱", "喜欢", "开心", "高兴", "快乐", "温柔", "甜蜜", "幸福", "满足", "舒服",
	"激动", "兴奋", "惊喜", "感动", "温暖", "安心", "放松", "愉快", "美好", "棒", "真好",
	"抱抱", "亲亲", "宝贝", "老公", "想你", "爱你", "心动", "撒娇", "粘人", "依赖",
	"么么哒", "亲爱的", "小可爱", "小宝贝", "心肝", "甜心", "乖乖", "宠爱",
	"❤️", "💕", "💖", "💗", "💘", "💝", "😘", "🥰", "😍", "🤗", "😊", "😄", "😆", "🥳",
	"✨", "🌟", "💫", "🌸", "🌺", "🌹", "🎉", "🎊", "🙌", "💪",
	"love", "happy", "sweet", "miss", "cute", "darling", "good", "glad", "nice", "great",
}

var negativeHigh = []string{
	"恨死了", "讨厌死了", "气死了", "崩溃", "绝望", "痛苦", "折磨", "煎熬", "抑郁",
	"depressed", "miserable", "heartbroken", "devastated",
}

var negativeMild = []string{
	"难过", "伤心", "生气", "讨厌", "烦躁", "焦虑", "失望", "孤独", "寂寞", "空虚",
	"疲惫", "累", "烦", "郁闷", "沮丧", "低落", "无聊", "害怕", "担心", "紧张",
	"委屈", "心疼", "难受", "不舒服", "压抑", "烦心", "心烦", "闹心",
	"哭", "眼泪", "流泪", "啜泣", "呜呜", "嘤嘤", "泪奔",
	"😢", "😭", "😔", "😞", "😩", "😫", "😤", "😡", "🤬", "😰", "😨", "😱",
	"💔", "💀", "😵", "🙄", "😒", "😑", "🥺", "😪",
	"sad", "angry", "hate", "cry", "hurt", "lonely", "upset", "disappointed", "tired", "bad",
}

var slangPositive = []string{
	"awsl", "yyds", "绝绝子", "爱了爱了", "omo", "嘻嘻", "哈哈", "哇塞", "牛逼", "666", "赞", "👍",
}

var slangNegative = []string{
	"emo了", "破防了", "心态崩了", "裂开", "麻了", "无语", "醉了", "服了", "败了",
}

// questionWords mark a message as a question even without a question mark.
var questionWords = []string{
	"吗", "什么", "怎么", "为什么", "哪里", "谁", "多少",
	"what", "why", "how", "when", "where", "who", "which",
}

// negationWords flip the polarity of plain keyword hits.
var negationWords = []string{
	"不", "没", "别", "无法", "not", "don't", "dont", "never", "no", "isn't", "can't",
}

// keywordPhrases is the scan list for the keyword pass.
var keywordPhrases = buildKeywordPhrases()

func buildKeywordPhrases() []phrase {
	var out []phrase
	add := func(words []string, weight float64, p polarity) {
		for _, w := range words {
			out = append(out, phrase{text: w, weight: weight, polarity: p})
		}
	}
	add(positiveHigh, highIntensity, positive)
	add(negativeHigh, highIntensity, negative)
	add(slangPositive, slangIntensity, positive)
	add(slangNegative, slangIntensity, negative)
	add(positiveMild, mildIntensity, positive)
	add(negativeMild, mildIntensity, negative)
	return sortByLength(out)
}
