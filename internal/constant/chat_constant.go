package constant

const (
	ChatMessageRoleUser = "user"
	ChatMessageRoleBot  = "bot"

	ModelDiabetes = "diabetes"
	ModelMovie    = "movie"

	// Greeting shown once when a session is created.
	MsgGreeting = "سلام! من دستیار هوشمند شما هستم. لطفاً یکی از مدل‌ها را انتخاب کنید: 1. تشخیص دیابت 2. پیشنهاد فیلم"

	// Model selection.
	MsgDiabetesSelected = "شما مدل دیابت را انتخاب کردید. لطفاً یکی از گزینه‌های زیر را انتخاب کنید:"
	MsgDiabetesOption1  = "1. آپلود تصویر آزمایش"
	MsgDiabetesOption2  = "2. پر کردن اطلاعات به صورت دستی"
	MsgMovieSelected    = "شما مدل فیلم را انتخاب کردید. لطفا نام فیلم یا ژانر را وارد کنید (فارسی یا انگلیسی)."

	// Diabetes intake choice.
	MsgChoiceUploadEcho = "آپلود تصویر آزمایش"
	MsgChoiceManualEcho = "پر کردن اطلاعات دستی"
	MsgAskForImage      = "لطفاً تصویر آزمایش خود را آپلود کنید."
	MsgInvalidChoice    = "لطفاً عدد 1 یا 2 را وارد کنید."
	MsgManualIntro      = "خب، اطلاعات را به صورت قدم به قدم وارد می‌کنیم.\n "

	// Diabetes image path.
	MsgImageReceivedEcho    = "عکس آزمایش ارسال شد"
	MsgImagePositive        = "متاسفانه باید بگم که شما دیابت دارید"
	MsgImageNegative        = "خوشبختانه شما دیابت ندارید"
	MsgImageInvalid         = "فرم تصویر معتبر نیست. لطفاً دوباره تلاش کنید."
	MsgImageMissingFieldsFa = "برخی فیلدها از تصویر استخراج نشدند: %s. لطفاً آنها را وارد کنید یا تصویر بهتری ارسال کنید."
	MsgImageProcessError    = "خطا هنگام پردازش تصویر: %v"

	// Diabetes manual path.
	MsgManualPositive   = "متاسفانه باید بهتون بگم که شما دیابت دارید"
	MsgManualNegative   = "تبریک میگم شما دیابت ندارید"
	MsgInvalidNumber    = "لطفاً یک عدد معتبر وارد کنید."
	MsgCollectingBroken = "خطا در وضعیت جمع‌آوری داده — لطفا دوباره شروع کنید."
	MsgPredictionError  = "خطا هنگام پیش‌بینی: %v"

	// Movie path.
	MsgMovieSuggestions    = "فیلم‌های پیشنهادی:"
	MsgMovieWhichOne       = "کدام یک از این فیلم‌ها مد نظر شماست؟"
	MsgMovieEnterNumber    = "لطفاً عدد مربوط به فیلم مورد نظر را وارد کنید."
	MsgMovieOutOfRange     = "عدد وارد شده خارج از بازه گزینه‌هاست. لطفاً یک عدد معتبر وارد کنید."
	MsgMovieNotFound       = "متأسفانه فیلمی با این عنوان یا ژانر پیدا نشد. لطفاً چیز دیگری امتحان کنید."
	MsgMovieEmptyQuery     = "لطفاً نام فیلم یا ژانر را وارد کنید"
	MsgMovieGenericFailure = "خطا در پردازش درخواست"
)
