package extraction

// Uncategorized is the catch-all category for items no rule matches.
const Uncategorized = "Uncategorized"

// Category pairs a category name with its keyword list. Keyword order inside
// a category does not matter to callers; the categorizer re-sorts keywords
// longest-first when it builds its rule table.
type Category struct {
	Name     string
	Keywords []string
}

// Taxonomy returns the fixed category table shared by the OCR and CSV
// ingestion paths. The slice order is significant: it is the tie-break when
// an item name could match keywords from more than one category.
func Taxonomy() []Category {
	return []Category{
		{Name: "Dairy", Keywords: []string{
			"organic a2", "a2 milk", "half & half", "greek yogurt", "sour cream", "cottage cheese",
			"whole milk", "skim milk", "almond milk", "soy milk", "oat milk", "coconut milk",
			"milk", "cheese", "butter", "yogurt", "cream", "dairy", "mozzarella", "cheddar",
			"parmesan", "swiss", "feta", "cream cheese", "ricotta",
		}},
		{Name: "Grain", Keywords: []string{
			"whole wheat", "white bread", "wheat bread", "sourdough", "multigrain",
			"bread", "wheat", "grain", "flour", "rice", "pasta", "noodle", "quinoa",
			"oats", "cereal", "bagel", "tortilla", "naan", "roti", "pita", "wraps",
			"buns", "rolls", "basmati", "jasmine rice", "brown rice", "white rice",
		}},
		{Name: "Fruit", Keywords: []string{
			"strawberry", "blueberry", "raspberry", "blackberry", "cranberry",
			"pineapple", "mango", "avocado", "grapefruit", "watermelon", "cantaloupe",
			"apple", "banana", "orange", "berry", "grape", "fruit", "fruits",
			"citrus", "peach", "pear", "plum", "kiwi", "lemon", "lime", "cherry",
		}},
		{Name: "Vegetable", Keywords: []string{
			"bell pepper", "green pepper", "red pepper", "broccoli", "cauliflower", "cucumber",
			"lettuce", "spinach", "tomato", "potato", "onion", "carrot", "pepper",
			"vegetable", "vegetables", "veggie", "veggies", "garlic", "ginger", "celery",
			"corn", "peas", "beans", "cabbage", "zucchini", "squash", "eggplant",
			"mushroom", "asparagus", "brussels sprouts",
		}},
		{Name: "Meat & Seafood", Keywords: []string{
			"ground beef", "ground turkey", "ground chicken", "chicken breast", "chicken thighs",
			"salmon", "tuna", "shrimp", "crab", "lobster", "tilapia", "cod", "halibut",
			"chicken", "beef", "pork", "fish", "meat", "seafood", "turkey", "lamb",
			"bacon", "sausage", "ham", "hot dog", "burger", "steak", "ribs",
		}},
		{Name: "Herb", Keywords: []string{
			"cilantro", "coriander", "basil", "parsley", "rosemary", "thyme", "mint",
			"oregano", "sage", "dill", "herb", "herbs", "chives", "tarragon",
		}},
		{Name: "Daal", Keywords: []string{
			"toor dal", "moong dal", "chana dal", "masoor dal", "urad dal",
			"daal", "dal", "lentil", "lentils", "pulse", "legume",
		}},
		{Name: "Paste", Keywords: []string{
			"toothpaste", "tomato paste", "garlic paste", "ginger paste", "curry paste",
			"paste", "tooth", "dental",
		}},
		{Name: "Pooja item", Keywords: []string{
			"pooja", "puja", "incense", "diya", "camphor", "kumkum", "agarbatti", "dhoop",
		}},
		{Name: "Snacks", Keywords: []string{
			"potato chips", "tortilla chips", "corn chips", "pretzel", "trail mix", "granola",
			"chips", "candy", "cookies", "snack", "snacks", "chocolate", "crackers",
			"nuts", "almond", "walnut", "peanut", "cashew", "pistachio",
		}},
		{Name: "Syrup", Keywords: []string{
			"maple syrup", "chocolate syrup", "caramel syrup",
			"syrup", "honey", "molasses", "agave", "jam", "jelly", "preserve",
		}},
		{Name: "Body soap", Keywords: []string{
			"body soap", "hand soap", "bar soap", "body wash", "shower gel", "liquid soap",
			"soap", "bath", "cleanser",
		}},
		{Name: "Household", Keywords: []string{
			"dish soap", "laundry detergent", "dishwasher detergent", "trash bag", "ziploc",
			"detergent", "tissue", "paper", "cleaner", "disinfectant", "bleach",
			"foil", "wrap", "sponge", "brush", "towel", "napkin", "toilet paper",
		}},
		{Name: "Beverages", Keywords: []string{
			"orange juice", "apple juice", "cranberry juice", "iced tea", "green tea",
			"juice", "soda", "water", "drink", "coffee", "tea", "beer", "wine",
			"beverage", "lemonade", "smoothie", "energy drink", "sports drink",
		}},
		{Name: "Personal Care", Keywords: []string{
			"hair shampoo", "body lotion", "face wash", "face moisturizer",
			"shampoo", "conditioner", "deodorant", "lotion", "moisturizer", "sunscreen",
			"razor", "toothbrush", "floss", "mouthwash", "toner", "serum", "cream",
		}},
	}
}
