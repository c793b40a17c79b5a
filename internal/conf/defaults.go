// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "LandmarkFinder")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "landmark-finder.log")

	viper.SetDefault("datastore.path", "landmarks.db")
	viper.SetDefault("datastore.seedfile", "")

	viper.SetDefault("wikidata.endpoint", "https://www.wikidata.org/w/api.php")
	viper.SetDefault("wikidata.language", "en")
	viper.SetDefault("wikidata.searchlimit", 10)
	viper.SetDefault("wikidata.timeout", 10*time.Second)
	viper.SetDefault("wikidata.aliases", map[string][]string{
		"pyramids_of_giza": {
			"Giza pyramid complex",
			"Great Pyramid of Giza",
		},
	})

	viper.SetDefault("facts.endpoint", "https://en.wikipedia.org/api/rest_v1/page/summary/")
	viper.SetDefault("facts.timeout", 10*time.Second)
	viper.SetDefault("facts.cachettl", 24*time.Hour)

	viper.SetDefault("gemini.apikey", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	viper.SetDefault("scraper.dataroot", "data/raw")
	viper.SetDefault("scraper.targetcount", 250)
	viper.SetDefault("scraper.mindimension", 100)
	viper.SetDefault("scraper.timeout", 15*time.Second)
	viper.SetDefault("scraper.keywords", defaultKeywords())

	viper.SetDefault("trainer.modelname", "landmark_resnet18")
	viper.SetDefault("trainer.epochs", 5)
	viper.SetDefault("trainer.command", "")
}

// defaultKeywords returns the built-in search keyword sets per landmark.
// Landmarks not listed here are searched by their own name.
func defaultKeywords() map[string][]string {
	return map[string][]string{
		"eiffel_tower": {
			"Eiffel Tower Paris",
			"Eiffel Tower monument",
			"Eiffel Tower tourist",
			"Eiffel Tower view",
			"Eiffel Tower night",
		},
		"statue_of_liberty": {
			"Statue of Liberty New York",
			"Statue of Liberty USA",
			"Statue of Liberty monument",
			"Statue of Liberty tourist",
			"Statue of Liberty view",
		},
		"taj_mahal": {
			"Taj Mahal India",
			"Taj Mahal monument",
			"Taj Mahal Agra",
			"Taj Mahal view",
			"Taj Mahal tourist",
		},
		"colosseum": {
			"Colosseum Rome",
			"Colosseum Italy",
			"Colosseum ancient",
			"Colosseum view",
			"Colosseum tourist",
		},
		"big_ben": {
			"Big Ben London",
			"Big Ben UK",
			"Big Ben clock tower",
			"Big Ben view",
			"Big Ben tourist",
		},
		"pyramids_of_giza": {
			"Pyramids of Giza Egypt",
			"Giza pyramids",
			"Great Pyramid",
			"Pyramids desert",
			"Pyramids tourist",
		},
		"sydney_opera_house": {
			"Sydney Opera House Australia",
			"Opera House Sydney",
			"Sydney Opera House view",
			"Sydney Opera House tourist",
			"Sydney Opera House landmark",
		},
		"burj_khalifa": {
			"Burj Khalifa Dubai",
			"Burj Khalifa UAE",
			"Burj Khalifa tallest",
			"Burj Khalifa view",
			"Burj Khalifa tourist",
		},
	}
}
