package translate

// lexicon maps Japanese object terms to their English equivalents. Detection
// prompts work far better in English, so known terms are rewritten before
// being handed to the model. Compound entries (e.g. "テレビのリモコン") must
// win over their shorter components; see Translate for the ordering rule.
var lexicon = map[string]string{
	// Animals
	"猫":    "cat",
	"犬":    "dog",
	"鳥":    "bird",
	"馬":    "horse",
	"牛":    "cow",
	"豚":    "pig",
	"羊":    "sheep",
	"鶏":    "chicken",
	"魚":    "fish",
	"ねこ":   "cat",
	"いぬ":   "dog",
	"とり":   "bird",
	"うま":   "horse",
	"うし":   "cow",
	"ぶた":   "pig",
	"ひつじ":  "sheep",
	"にわとり": "chicken",
	"さかな":  "fish",

	// Vehicles
	"車":     "car",
	"自動車":   "car",
	"自転車":   "bicycle",
	"バイク":   "motorcycle",
	"オートバイ": "motorcycle",
	"バス":    "bus",
	"電車":    "train",
	"飛行機":   "airplane",
	"船":     "ship",
	"ボート":   "boat",
	"トラック":  "truck",
	"くるま":   "car",
	"じてんしゃ": "bicycle",
	"でんしゃ":  "train",
	"ひこうき":  "airplane",
	"ふね":    "ship",

	// Furniture
	"椅子":   "chair",
	"テーブル": "table",
	"机":    "desk",
	"ソファ":  "sofa",
	"ベッド":  "bed",
	"棚":    "shelf",
	"本棚":   "bookshelf",
	"タンス":  "dresser",
	"いす":   "chair",
	"つくえ":  "desk",
	"たな":   "shelf",
	"ほんだな": "bookshelf",

	// Food
	"りんご":    "apple",
	"バナナ":    "banana",
	"オレンジ":   "orange",
	"ピザ":     "pizza",
	"ケーキ":    "cake",
	"パン":     "bread",
	"ご飯":     "rice",
	"パスタ":    "pasta",
	"ハンバーガー": "hamburger",
	"サンドイッチ": "sandwich",
	"ごはん":    "rice",

	// Electronics
	"リモコン":     "remote control",
	"テレビのリモコン": "television remote control",
	"テレビリモコン":  "television remote control",
	"テレビ":      "television",
	"TV":       "television",
	"パソコン":     "computer",
	"コンピューター":  "computer",
	"スマートフォン":  "smartphone",
	"スマホ":      "smartphone",
	"携帯電話":     "mobile phone",
	"携帯":       "mobile phone",
	"カメラ":      "camera",
	"ラジオ":      "radio",
	"スピーカー":    "speaker",
	"ヘッドフォン":   "headphones",
	"イヤホン":     "earphones",
	"タブレット":    "tablet",
	"プリンター":    "printer",
	"キーボード":    "keyboard",
	"マウス":      "mouse",
	"モニター":     "monitor",
	"ディスプレイ":   "display",
	"ケータイ":     "mobile phone",

	// Common objects
	"本":     "book",
	"ペン":    "pen",
	"鉛筆":    "pencil",
	"ノート":   "notebook",
	"紙":     "paper",
	"時計":    "clock",
	"腕時計":   "watch",
	"財布":    "wallet",
	"かばん":   "bag",
	"バッグ":   "bag",
	"靴":     "shoes",
	"くつ":    "shoes",
	"帽子":    "hat",
	"ぼうし":   "hat",
	"眼鏡":    "glasses",
	"めがね":   "glasses",
	"傘":     "umbrella",
	"かさ":    "umbrella",
	"ドア":    "door",
	"窓":     "window",
	"まど":    "window",
	"鍵":     "key",
	"かぎ":    "key",
	"電話":    "phone",
	"でんわ":   "phone",
	"花瓶":    "vase",
	"かびん":   "vase",
	"花":     "flower",
	"はな":    "flower",
	"植物":    "plant",
	"しょくぶつ": "plant",
	"木":     "tree",
	"き":     "tree",
	"草":     "grass",
	"くさ":    "grass",
}
