package worldgen

import (
	"fmt"

	"github.com/kurohane/tenka/game/dice"
)

// nameDeck deals character names without repeats, falling back to
// numbered names once the table runs dry.
type nameDeck struct {
	pool  []string
	extra int
}

func newNameDeck(d *dice.Roller) *nameDeck {
	pool := make([]string, len(characterNames))
	copy(pool, characterNames)
	dice.Shuffle(d, pool)
	return &nameDeck{pool: pool}
}

func (n *nameDeck) draw() string {
	if len(n.pool) > 0 {
		name := n.pool[len(n.pool)-1]
		n.pool = n.pool[:len(n.pool)-1]
		return name
	}
	n.extra++
	return fmt.Sprintf("Retainer %d", n.extra)
}

func countryName(i int) string {
	if i < len(countryNames) {
		return countryNames[i]
	}
	return fmt.Sprintf("Realm %d", i+1)
}

func castleName(i int) string {
	if i < len(castleNames) {
		return castleNames[i]
	}
	return fmt.Sprintf("Fort %d", i+1)
}

var countryNames = []string{
	"Asuka", "Kaga", "Mino", "Owari", "Suruga", "Tosa",
	"Hizen", "Dewa", "Iyo", "Sagami", "Echigo", "Satsuma",
}

var castleNames = []string{
	"Shirasagi", "Kurogane", "Tsukigata", "Hayabusa", "Akatsuki",
	"Fudo", "Yamabuki", "Isazuma", "Kagero", "Tachibana",
	"Oboro", "Shinonome", "Raiden", "Kosumi", "Hagane",
	"Midorigaoka", "Samidare", "Tokiwa", "Unryu", "Wakaba",
	"Izayoi", "Kasumi", "Murakumo", "Nagatsuki", "Yugure",
	"Asagiri", "Hatsuharu", "Kiyonami", "Shigure", "Tanikaze",
}

var characterNames = []string{
	"Akechi Jubei", "Amano Kagetora", "Ashina Morinobu", "Baba Nobufusa",
	"Chosokabe Kunichika", "Date Shigezane", "Endo Naotsune", "Fuma Kotaro",
	"Gamou Sadahide", "Hara Toratane", "Hatano Hideharu", "Honda Masazumi",
	"Horio Yoshiharu", "Ii Naomasa", "Ikeda Tsuneoki", "Inaba Yoshimichi",
	"Ishikawa Kazumasa", "Itagaki Nobukata", "Kakizaki Kageie", "Kani Saizo",
	"Katakura Kojuro", "Kato Yoshiaki", "Kimura Shigenari", "Kiso Yoshimasa",
	"Kobayakawa Takakage", "Kosaka Masanobu", "Kuki Yoshitaka", "Kuroda Kanbei",
	"Kyogoku Takatsugu", "Maeda Keiji", "Magara Naotaka", "Matsudaira Tadayoshi",
	"Mizuno Katsunari", "Mogami Yoshiaki", "Mori Katsunaga", "Murakami Yoshikiyo",
	"Naito Masatoyo", "Nanbu Harumasa", "Niwa Nagahide", "Obu Toramasa",
	"Oda Nobutada", "Ogasawara Nagatoki", "Okudaira Sadamasa", "Ota Dokan",
	"Oyamada Nobushige", "Ryuzoji Takanobu", "Saito Tatsuoki", "Sakai Tadatsugu",
	"Sakakibara Yasumasa", "Sanada Nobuyuki", "Sassa Narimasa", "Satake Yoshishige",
	"Sengoku Hidehisa", "Shibata Katsuie", "Shima Sakon", "Shimazu Toyohisa",
	"Suganuma Sadamitsu", "Tachibana Muneshige", "Takenaka Hanbei", "Todo Takatora",
	"Torii Mototada", "Toyotomi Hidenaga", "Ukita Naoie", "Wakisaka Yasuharu",
	"Yamagata Masakage", "Yamanaka Shikanosuke", "Yuki Hideyasu", "Zakoji Nobutada",
}
