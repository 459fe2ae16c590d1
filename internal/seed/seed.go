package seed

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

// Run wipes the content tables and loads the starter stories. Meant for
// development databases; it deletes quiz results too.
func Run(ctx context.Context, log *logger.Logger, db *gorm.DB) error {
	log = log.With("component", "seed")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&types.QuizResult{},
			&types.QuizChoice{},
			&types.Quiz{},
			&types.Choice{},
			&types.Chapter{},
			&types.Story{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		log.Info("Cleared existing content")

		if err := seedTokyoStory(tx); err != nil {
			return err
		}
		if err := seedCafeStory(tx); err != nil {
			return err
		}
		log.Info("Seeding completed")
		return nil
	})
}

type chapterSpec struct {
	key         string
	parentKey   string
	number      int
	depth       int
	content     string
	ruby        string
	translation string
	vocabulary  []types.VocabularyItem
}

type choiceSpec struct {
	fromKey     string
	text        string
	description string
	toKey       string
	order       int
}

type quizChoiceSpec struct {
	text        string
	correct     bool
	explanation string
}

type quizSpec struct {
	question   string
	qtype      string
	sourceText string
	choices    []quizChoiceSpec
}

func createStoryTree(
	tx *gorm.DB,
	story *types.Story,
	chapters []chapterSpec,
	choices []choiceSpec,
	quizzes []quizSpec,
) error {
	if err := tx.Create(story).Error; err != nil {
		return err
	}

	ids := make(map[string]uuid.UUID, len(chapters))
	for _, ch := range chapters {
		ids[ch.key] = uuid.New()
	}

	for _, ch := range chapters {
		chapter := &types.Chapter{
			ID:            ids[ch.key],
			StoryID:       story.ID,
			ChapterNumber: ch.number,
			DepthLevel:    ch.depth,
			Content:       ch.content,
			Vocabulary:    datatypes.JSONSlice[types.VocabularyItem](ch.vocabulary),
		}
		if ch.parentKey != "" {
			pid := ids[ch.parentKey]
			chapter.ParentChapterID = &pid
		}
		if ch.ruby != "" {
			ruby := ch.ruby
			chapter.ContentWithRuby = &ruby
		}
		if ch.translation != "" {
			tr := ch.translation
			chapter.Translation = &tr
		}
		if err := tx.Omit("Choices").Create(chapter).Error; err != nil {
			return err
		}
	}

	for _, c := range choices {
		choice := &types.Choice{
			ChapterID:     ids[c.fromKey],
			ChoiceText:    c.text,
			NextChapterID: ids[c.toKey],
			DisplayOrder:  c.order,
		}
		if c.description != "" {
			desc := c.description
			choice.ChoiceDescription = &desc
		}
		if err := tx.Create(choice).Error; err != nil {
			return err
		}
	}

	rootID := ids[chapters[0].key]
	if err := tx.Model(&types.Story{}).
		Where("id = ?", story.ID).
		Update("root_chapter_id", rootID).Error; err != nil {
		return err
	}

	for _, q := range quizzes {
		quiz := &types.Quiz{
			StoryID:         story.ID,
			QuestionText:    q.question,
			QuestionType:    q.qtype,
			DifficultyLevel: story.LevelJLPT,
		}
		if q.sourceText != "" {
			src := q.sourceText
			quiz.SourceText = &src
		}
		for _, qc := range q.choices {
			choice := &types.QuizChoice{
				ChoiceText: qc.text,
				IsCorrect:  qc.correct,
			}
			if qc.explanation != "" {
				expl := qc.explanation
				choice.Explanation = &expl
			}
			quiz.Choices = append(quiz.Choices, choice)
		}
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTokyoStory(tx *gorm.DB) error {
	story := &types.Story{
		Title:         "東京での新しい生活",
		Description:   "初めて東京に来た留学生の1日を追体験。渋谷での選択があなたの物語を変えます。",
		LevelJLPT:     types.LevelN3,
		LevelCEFR:     types.LevelB1,
		EstimatedTime: 10,
	}

	chapters := []chapterSpec{
		{
			key: "1-1", number: 1, depth: 0,
			content:     "今日は私の東京での新しい生活の初めての日です。渋谷の駅に着いて、人の多さに驚きました。これから、どこへ行きましょうか?",
			translation: "Today is my first day of a new life in Tokyo. I arrived at Shibuya Station and was surprised by the number of people. Where should I go from here?",
			vocabulary: []types.VocabularyItem{
				{Word: "生活", Reading: "せいかつ", Meanings: map[string]string{"en": "life, livelihood"}, Example: "東京での新しい生活"},
				{Word: "驚く", Reading: "おどろく", Meanings: map[string]string{"en": "to be surprised"}, Example: "人の多さに驚きました"},
			},
		},
		{
			key: "1-2a", parentKey: "1-1", number: 2, depth: 1,
			content:     "静かなカフェに入りました。窓際の席に座って、カフェラテを注文しました。外を見ると、渋谷のスクランブル交差点が見えます。多くの人が行き交っています。",
			translation: "I entered a quiet cafe. I sat at a window seat and ordered a cafe latte. Looking outside, I can see the Shibuya Scramble Crossing.",
		},
		{
			key: "1-2b", parentKey: "1-1", number: 2, depth: 1,
			content:     "ハチ公像の前に来ました。多くの観光客が写真を撮っています。私も記念写真を撮りました。次に、渋谷センター街を歩いてみることにしました。",
			translation: "I came to the Hachiko statue. Many tourists are taking pictures. I also took a commemorative photo.",
		},
		{
			key: "1-2c", parentKey: "1-1", number: 2, depth: 1,
			content:     "新しいアパートに到着しました。3階の部屋です。鍵を開けて中に入ると、小さいですが綺麗な部屋でした。窓から公園が見えます。",
			translation: "I arrived at my new apartment. It is a room on the 3rd floor. It was a small but clean room.",
		},
		{
			key: "1-3a", parentKey: "1-2a", number: 3, depth: 2,
			content:     "カフェで落ち着いた後、隣のテーブルの日本人に道を尋ねました。その人はとても親切で、「明治神宮は静かで素敵ですよ」と教えてくれました。",
			translation: "After settling down at the cafe, I asked a Japanese person at the next table for directions. They recommended Meiji Shrine.",
		},
		{
			key: "1-3b", parentKey: "1-2b", number: 3, depth: 2,
			content:     "渋谷を歩き回っているうちに、小さな神社を見つけました。お参りをして、これからの東京生活がうまくいくようにお願いしました。",
			translation: "While walking around Shibuya, I found a small shrine and prayed for my Tokyo life to go well.",
		},
		{
			key: "1-3c", parentKey: "1-2c", number: 3, depth: 2,
			content:     "荷物を置いた後、近所を散歩してみました。スーパーやコンビニ、駅までの道を確認しました。この街での生活が楽しみになってきました。",
			translation: "After putting down my luggage, I took a walk around the neighborhood and checked the way to the station.",
		},
		{
			key: "1-4", parentKey: "1-3a", number: 4, depth: 3,
			content:     "夕方になり、素敵な定食屋さんを見つけました。生姜焼き定食を注文すると、とても美味しくて感動しました。「また来てね」と言われ、心が温かくなりました。",
			translation: "In the evening, I found a nice set meal restaurant. The ginger pork set meal was so delicious that I was moved.",
		},
		{
			key: "1-5", parentKey: "1-4", number: 5, depth: 4,
			content:     "東京での最初の一日が終わりました。少し疲れましたが、とても充実した時間でした。明日から日本語学校が始まります。新しい友達ができるといいなと思いながら、眠りにつきました。",
			translation: "My first day in Tokyo is over. Japanese language school starts tomorrow. I fell asleep hoping to make new friends.",
		},
	}

	choices := []choiceSpec{
		{fromKey: "1-1", text: "カフェで休憩する", description: "疲れたので、近くのカフェで一休みして、ゆっくり考えましょう。", toKey: "1-2a", order: 1},
		{fromKey: "1-1", text: "観光スポットを探す", description: "せっかく渋谷に来たので、有名な観光地を訪れてみたいです。", toKey: "1-2b", order: 2},
		{fromKey: "1-1", text: "アパートへ直行する", description: "荷物が重いので、まず新しいアパートに向かって荷物を置きたいです。", toKey: "1-2c", order: 3},
		{fromKey: "1-2a", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-3a", order: 1},
		{fromKey: "1-2b", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-3b", order: 1},
		{fromKey: "1-2c", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-3c", order: 1},
		// Branches converge on the restaurant chapter.
		{fromKey: "1-3a", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-4", order: 1},
		{fromKey: "1-3b", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-4", order: 1},
		{fromKey: "1-3c", text: "次へ進む", description: "ストーリーを続けます。", toKey: "1-4", order: 1},
		{fromKey: "1-4", text: "次へ進む", description: "ストーリーを完結させます。", toKey: "1-5", order: 1},
	}

	quizzes := []quizSpec{
		{
			question: "主人公は渋谷に着いて、何に驚きましたか？", qtype: types.QuestionTypeReading,
			sourceText: "渋谷の駅に着いて、人の多さに驚きました",
			choices: []quizChoiceSpec{
				{text: "建物の高さ", correct: false, explanation: "不正解です。建物については触れていません。"},
				{text: "人の多さ", correct: true, explanation: "正解です。「人の多さに驚きました」と書いてあります。"},
				{text: "電車の速さ", correct: false, explanation: "不正解です。電車については触れていません。"},
				{text: "天気の悪さ", correct: false, explanation: "不正解です。天気については触れていません。"},
			},
		},
		{
			question: "主人公が選んだ定食は何ですか？", qtype: types.QuestionTypeReading,
			sourceText: "生姜焼き定食を注文すると、とても美味しくて感動しました",
			choices: []quizChoiceSpec{
				{text: "カレーライス", correct: false, explanation: "不正解です。カレーは出てきません。"},
				{text: "寿司", correct: false, explanation: "不正解です。寿司は出てきません。"},
				{text: "生姜焼き定食", correct: true, explanation: "正解です。「生姜焼き定食を注文すると」と書いてあります。"},
				{text: "ラーメン", correct: false, explanation: "不正解です。ラーメンは出てきません。"},
			},
		},
		{
			question: "明日から何が始まりますか？", qtype: types.QuestionTypeReading,
			sourceText: "明日から日本語学校が始まります",
			choices: []quizChoiceSpec{
				{text: "アルバイト", correct: false, explanation: "不正解です。アルバイトについては触れていません。"},
				{text: "旅行", correct: false, explanation: "不正解です。旅行については触れていません。"},
				{text: "会社", correct: false, explanation: "不正解です。会社については触れていません。"},
				{text: "日本語学校", correct: true, explanation: "正解です。「明日から日本語学校が始まります」と書いてあります。"},
			},
		},
	}

	return createStoryTree(tx, story, chapters, choices, quizzes)
}

func seedCafeStory(tx *gorm.DB) error {
	story := &types.Story{
		Title:         "カフェでの出会い",
		Description:   "偶然入ったカフェで始まる、心温まる友情のストーリー。",
		LevelJLPT:     types.LevelN4,
		LevelCEFR:     types.LevelA2,
		EstimatedTime: 8,
	}

	chapters := []chapterSpec{
		{
			key: "2-1", number: 1, depth: 0,
			content:     "雨の日、私は小さなカフェに入りました。中は暖かくて、コーヒーのいい香りがしました。席に座ると、隣のテーブルに同じくらいの年齢の人が座っていました。どうしますか？",
			translation: "On a rainy day, I entered a small cafe. A person about my age was sitting at the next table. What will you do?",
			vocabulary: []types.VocabularyItem{
				{Word: "香り", Reading: "かおり", Meanings: map[string]string{"en": "scent, aroma"}, Example: "コーヒーのいい香り"},
				{Word: "年齢", Reading: "ねんれい", Meanings: map[string]string{"en": "age"}, Example: "同じくらいの年齢の人"},
			},
		},
		{
			key: "2-2a", parentKey: "2-1", number: 2, depth: 1,
			content:     "その人は日本語の教科書を読んでいました。「日本語を勉強していますか？」と話しかけると、笑顔で「はい、でも難しいです」と答えました。私たちは日本語の勉強について話し始めました。",
			translation: "That person was reading a Japanese textbook. We started talking about studying Japanese.",
		},
		{
			key: "2-2b", parentKey: "2-1", number: 2, depth: 1,
			content:     "本を開いて読み始めました。村上春樹の小説です。30分くらい読んでいると、隣の人が「それ、面白いですか？」と聞いてきました。",
			translation: "I started reading a Haruki Murakami novel. The person next to me asked, \"Is that interesting?\"",
		},
		{
			key: "2-3", parentKey: "2-2a", number: 3, depth: 2,
			content:     "話してみると、同じ日本語学校に通っていることが分かりました。連絡先を交換しました。新しい友達ができて、心が温かくなりました。",
			translation: "It turned out we attend the same Japanese language school. We exchanged contact information. My heart warmed.",
		},
	}

	choices := []choiceSpec{
		{fromKey: "2-1", text: "話しかける", description: "勇気を出して、隣の人に話しかけてみます。", toKey: "2-2a", order: 1},
		{fromKey: "2-1", text: "本を読む", description: "静かに自分の時間を楽しみます。持ってきた本を読みます。", toKey: "2-2b", order: 2},
		{fromKey: "2-2a", text: "次へ進む", description: "ストーリーを続けます。", toKey: "2-3", order: 1},
		{fromKey: "2-2b", text: "次へ進む", description: "ストーリーを続けます。", toKey: "2-3", order: 1},
	}

	quizzes := []quizSpec{
		{
			question: "カフェに入った日の天気はどうでしたか？", qtype: types.QuestionTypeReading,
			sourceText: "雨の日、私は小さなカフェに入りました",
			choices: []quizChoiceSpec{
				{text: "晴れ", correct: false, explanation: "不正解です。晴れではありません。"},
				{text: "雨", correct: true, explanation: "正解です。「雨の日」と書いてあります。"},
				{text: "曇り", correct: false, explanation: "不正解です。曇りではありません。"},
				{text: "雪", correct: false, explanation: "不正解です。雪ではありません。"},
			},
		},
		{
			question: "カフェで新しい友達と何を交換しましたか？", qtype: types.QuestionTypeReading,
			sourceText: "連絡先を交換しました",
			choices: []quizChoiceSpec{
				{text: "本", correct: false, explanation: "不正解です。本は交換していません。"},
				{text: "プレゼント", correct: false, explanation: "不正解です。プレゼントは交換していません。"},
				{text: "連絡先", correct: true, explanation: "正解です。「連絡先を交換しました」と書いてあります。"},
				{text: "名刺", correct: false, explanation: "不正解です。名刺については触れていません。"},
			},
		},
		{
			question: "主人公の気持ちはどうなりましたか？", qtype: types.QuestionTypeReading,
			sourceText: "新しい友達ができて、心が温かくなりました",
			choices: []quizChoiceSpec{
				{text: "悲しくなった", correct: false, explanation: "不正解です。悲しくなっていません。"},
				{text: "怒った", correct: false, explanation: "不正解です。怒っていません。"},
				{text: "心配になった", correct: false, explanation: "不正解です。心配していません。"},
				{text: "心が温かくなった", correct: true, explanation: "正解です。「心が温かくなりました」と書いてあります。"},
			},
		},
	}

	return createStoryTree(tx, story, chapters, choices, quizzes)
}
