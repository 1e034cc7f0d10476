package bot

// HelpText describes the command surface. Served on the webhook's help
// endpoint and suitable for a host framework's help hook.
func (e *Engine) HelpText() string {
	return `【how to use】
1. basic query (shows the first 10 results):
   - <class> <origin> <destination>               e.g. high-speed Beijing Shanghai
   - <class> <origin> <destination> <date>        e.g. high-speed Beijing Shanghai 2024-06-05
   - <class> <origin> <destination> <date> <time> e.g. high-speed Beijing Shanghai 2024-06-05 09:00
   classes: high-speed, bullet, normal

2. natural language:
   - "high-speed train from Beijing to Shanghai tomorrow"
   - "bullet train from Chengdu to Xi'an today 15:00"

3. paging:
   - +next page
   - +previous page

4. follow-up filtering:
   - +cheapest second class
   - +departures before 09:00`
}
